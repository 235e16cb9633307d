package floorplan

// ListRow is one entry of the side list next to the canvas.
type ListRow struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
	Status   Status `json:"status"`
	Label    string `json:"label"`
	Placed   bool   `json:"placed"`
	Selected bool   `json:"selected"`
}

// SideList mirrors canvas selection for every entity, placed or not.
// It deliberately ignores drag state.
func SideList(entities []Entity, selectedID string) []ListRow {
	rows := make([]ListRow, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, ListRow{
			ID:       e.ID,
			Name:     e.Name,
			Capacity: e.Capacity,
			Status:   e.Status,
			Label:    StyleFor(e.Status).Label,
			Placed:   e.Placed(),
			Selected: selectedID != "" && e.ID == selectedID,
		})
	}
	return rows
}
