package queue

import (
    "context"
    "encoding/json"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFormatEvent(t *testing.T) {
    line := FormatEvent(PropertyEvent{
        Type: PropertyCreated, PropertyID: 12, LandlordID: 7, Title: "Loft", Status: "available",
        PhotosAdded: 3, OccurredAt: "2024-05-01T10:00:00Z",
    })
    assert.Equal(t, `[2024-05-01T10:00:00Z] property.created | property_id=12 | landlord_id=7 | title="Loft" | status=available | photos_added=3`+"\n", line)

    line = FormatEvent(PropertyEvent{Type: PropertyDeleted, PropertyID: 12, LandlordID: 7, OccurredAt: "t"})
    assert.Equal(t, "[t] property.deleted | property_id=12 | landlord_id=7\n", line)
}

func TestActivityLog_HandleAppends(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "property.log")
    a := &ActivityLog{Path: path}

    for _, typ := range []string{PropertyCreated, PropertyDeleted} {
        body, err := json.Marshal(PropertyEvent{Type: typ, PropertyID: 1, LandlordID: 2, OccurredAt: "t"})
        require.NoError(t, err)
        require.NoError(t, a.Handle(body))
    }

    b, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Equal(t, "[t] property.created | property_id=1 | landlord_id=2\n[t] property.deleted | property_id=1 | landlord_id=2\n", string(b))
}

func TestActivityLog_HandleRejectsBadBodies(t *testing.T) {
    a := &ActivityLog{Path: filepath.Join(t.TempDir(), "property.log")}
    assert.Error(t, a.Handle([]byte("{nope")))
    assert.Error(t, a.Handle([]byte(`{"type":""}`)))
}

func TestNopPublisher(t *testing.T) {
    assert.NoError(t, NopPublisher{}.Publish(context.Background(), PropertyEvent{Type: PropertyCreated}))
}
