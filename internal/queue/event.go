// Package queue defines the property events exchanged over the message
// broker, the publisher used by the service layer and the background
// consumer that turns them into an activity log.
package queue

// Event types published after a property mutation has committed.
const (
    PropertyCreated       = "property.created"
    PropertyUpdated       = "property.updated"
    PropertyStatusChanged = "property.status_changed"
    PropertyDeleted       = "property.deleted"
    PropertyPhotoRemoved  = "property.photo_removed"
)

// PropertyQueueName is the durable queue all property events are routed to.
const PropertyQueueName = "property.events"

// PropertyEvent carries enough information for downstream consumers to log
// or notify without querying the primary database.
type PropertyEvent struct {
    Type        string `json:"type"`
    PropertyID  uint64 `json:"property_id"`
    LandlordID  uint64 `json:"landlord_id"`
    Title       string `json:"title,omitempty"`
    Status      string `json:"status,omitempty"`
    PhotosAdded int    `json:"photos_added,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}
