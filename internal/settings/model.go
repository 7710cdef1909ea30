package settings

import "time"

// Settings holds the per-installation runtime flags. A single row exists;
// the flags are read on most requests and change rarely.
type Settings struct {
	// LockApprovedEvents blocks edits and deletes of approved events even
	// for roles whose static grants would otherwise allow them.
	LockApprovedEvents bool `json:"lock_approved_events"`
	// AllowEmployeeGallery makes the evidence gallery reachable for the
	// employee role.
	AllowEmployeeGallery bool `json:"allow_employee_gallery"`

	StoreName    string    `json:"store_name"`
	ExportFooter string    `json:"export_footer"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Defaults returns the settings applied before anyone has saved a row.
func Defaults() Settings {
	return Settings{
		LockApprovedEvents:   true,
		AllowEmployeeGallery: false,
	}
}
