package types

import "strconv"

// Item is a tradeable type from the static item table.
type Item struct {
	ID     int32    `json:"id"`
	Name   string   `json:"name"`
	Volume *float64 `json:"volume"` // packaged m3 per unit; nil when unknown
}

// UnitVolume returns the per-unit volume, or 0 when the volume is unknown.
func (i Item) UnitVolume() float64 {
	if i.Volume == nil || *i.Volume < 0 {
		return 0
	}
	return *i.Volume
}

// DisplayName returns the item name, falling back to the id.
func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return strconv.Itoa(int(i.ID))
}

// Hub is a named trading location inside a region.
type Hub struct {
	Name     string `json:"name"`
	RegionID int32  `json:"region_id"`
}

// Route is a directed hub pair with a known jump count.
type Route struct {
	From  Hub
	To    Hub
	Jumps int
}
