package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, onUpdate UpdateFunc, interval time.Duration) *Catalog {
	t.Helper()
	c := New(Config{OnUpdate: onUpdate, UpdateInterval: interval})
	t.Cleanup(c.Close)
	return c
}

func TestListPagination(t *testing.T) {
	c := newTestCatalog(t, nil, time.Hour)

	var seen []string
	cursor := ""
	pages := 0
	for {
		page, err := c.List(cursor)
		require.NoError(t, err)
		pages++
		for _, resource := range page.Resources {
			seen = append(seen, resource.URI)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, numResources/pageSize, pages)
	require.Len(t, seen, numResources)
	assert.Equal(t, "demo://resource/1", seen[0])
	assert.Equal(t, "demo://resource/100", seen[len(seen)-1])
}

func TestListInvalidCursor(t *testing.T) {
	c := newTestCatalog(t, nil, time.Hour)

	_, err := c.List("not base64!!")
	assert.Error(t, err)

	// Valid base64 but not a number.
	_, err = c.List("bm9wZQ==")
	assert.Error(t, err)
}

func TestReadResource(t *testing.T) {
	c := newTestCatalog(t, nil, time.Hour)

	contents, err := c.Read("demo://resource/1")
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "text/plain", contents[0].MIMEType)
	assert.NotEmpty(t, contents[0].Text)

	contents, err = c.Read("demo://resource/2")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contents[0].MIMEType)
	assert.NotEmpty(t, contents[0].Blob)

	_, err = c.Read("demo://resource/999")
	assert.Error(t, err)
}

func TestSubscribeNotifications(t *testing.T) {
	updates := make(chan string, 16)
	c := newTestCatalog(t, func(uri string) { updates <- uri }, 10*time.Millisecond)

	require.NoError(t, c.Subscribe("demo://resource/1"))
	require.Error(t, c.Subscribe("demo://resource/999"))

	select {
	case uri := <-updates:
		assert.Equal(t, "demo://resource/1", uri)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update notification")
	}

	c.Unsubscribe("demo://resource/1")
	// Drain anything emitted before the unsubscribe landed, then verify
	// silence.
	for {
		select {
		case <-updates:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	select {
	case uri := <-updates:
		t.Fatalf("unexpected update after unsubscribe: %s", uri)
	case <-time.After(50 * time.Millisecond):
	}
}
