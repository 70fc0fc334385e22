package cache

import (
	"fmt"
)

// key names definition
// The redis layer holds read-mostly catalog data and pending checkouts
// only. Inventory counters never live here: availability is always
// decided against a locked database row.
const (
	EventCatalogKey = "event:%d:catalog"   // cached catalog view, '%d' is event id
	EventSlugKey    = "event:slug:%s"      // slug -> event id, '%s' is the slug
	PendingCheckout = "checkout:intent:%s" // stashed issue request, '%s' is payment intent id
)

func MakeEventCatalogKey(eventID uint) string {
	return fmt.Sprintf("event:%d:catalog", eventID)
}

func MakeEventSlugKey(slug string) string {
	return fmt.Sprintf("event:slug:%s", slug)
}

func MakePendingCheckoutKey(intentID string) string {
	return fmt.Sprintf("checkout:intent:%s", intentID)
}
