package models

// Mosque is read-mostly reference data; rows are created out of band.
type Mosque struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Address   *string `db:"address" json:"address"`
	ImagePath *string `db:"image_path" json:"image_path"`
}

// Location returns the address when set, otherwise the mosque name.
func (m *Mosque) Location() string {
	if m == nil {
		return ""
	}
	if m.Address != nil && *m.Address != "" {
		return *m.Address
	}
	return m.Name
}
