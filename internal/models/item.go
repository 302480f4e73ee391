package models

// Item represents a bookable item. Only ItemID is used by the availability
// engine; the remaining fields pass through to markers and reports.
type Item struct {
	ItemID        ID     `json:"item_id" yaml:"item_id"`
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	ItemTypeID    ID     `json:"item_type_id,omitempty" yaml:"item_type_id,omitempty"`
	HomeLibraryID ID     `json:"home_library_id,omitempty" yaml:"home_library_id,omitempty"`
	Barcode       string `json:"barcode,omitempty" yaml:"barcode,omitempty"`
}

// Label returns a short human-readable name for the item.
func (i Item) Label() string {
	switch {
	case i.Barcode != "" && i.Title != "":
		return i.Title + " (" + i.Barcode + ")"
	case i.Barcode != "":
		return i.Barcode
	case i.Title != "":
		return i.Title
	default:
		return string(i.ItemID)
	}
}

// ItemIDs returns the distinct non-empty identifiers of items in input order.
func ItemIDs(items []Item) []ID {
	ids := make([]ID, 0, len(items))
	seen := make(map[ID]struct{}, len(items))
	for _, item := range items {
		if item.ItemID.IsZero() {
			continue
		}
		if _, ok := seen[item.ItemID]; ok {
			continue
		}
		seen[item.ItemID] = struct{}{}
		ids = append(ids, item.ItemID)
	}
	return ids
}
