package schema

// CertTable represents the 'certs' table
type CertTable struct {
	Table     string
	ID        string
	Email     string
	Name      string
	Title     string
	CreatedAt string
}

// Cert is the schema definition for certs
var Cert = CertTable{
	Table:     "certs",
	ID:        "id",
	Email:     "email",
	Name:      "name",
	Title:     "title",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t CertTable) Columns() []string {
	return []string{t.ID, t.Email, t.Name, t.Title, t.CreatedAt}
}
