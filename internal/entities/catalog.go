package entities

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/listview"
)

// SubjectInput is the create and update payload of a subject.
type SubjectInput struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=120"`
	Code        string `json:"code" form:"code" binding:"required,min=2,max=32"`
	Description string `json:"description" form:"description" binding:"max=1000"`
	Status      string `json:"status" form:"status" binding:"required,oneof=active inactive"`
}

func (in *SubjectInput) Apply(s *domain.Subject) {
	s.Name = strings.TrimSpace(in.Name)
	s.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	s.Description = strings.TrimSpace(in.Description)
	s.Status = in.Status
}

// Subjects is the subject resource.
var Subjects = define(Entity[domain.Subject]{
	Slug:     "subjects",
	Title:    "Subjects",
	Singular: "subject",
	Read:     domain.PermSubjectsRead,
	Write:    domain.PermSubjectsWrite,
	Columns: []listview.Column[domain.Subject]{
		{ID: "name", Header: "Name", Sortable: true, Cell: func(s domain.Subject) string { return s.Name }},
		{ID: "code", Header: "Code", Width: "8rem", Sortable: true, Cell: func(s domain.Subject) string { return s.Code }},
		{
			ID: "status", Header: "Status", Width: "7rem",
			Cell: func(s domain.Subject) string { return s.Status },
			HTML: func(s domain.Subject) template.HTML { return statusBadge(s.Status) },
		},
		{ID: "updated_at", Header: "Updated", Width: "8rem", Sortable: true, Cell: func(s domain.Subject) string { return formatDate(s.UpdatedAt) }},
	},
	Schema: listview.Schema{
		Filters:     []listview.Filter{statusFilter(domain.StatusActive, domain.StatusInactive)},
		DefaultSort: "name:asc",
	},
	SearchFields: []string{"name", "code", "description"},
	Empty: listview.EmptyStates{
		Initial: listview.EmptyState{
			Icon:        "book",
			Title:       "No subjects yet",
			Description: "Create the first subject to start organising content.",
			Action:      &listview.Action{Label: "New subject", Href: "/subjects/new"},
		},
		Filtered: listview.EmptyState{
			Icon:        "search",
			Title:       "No matching subjects",
			Description: "Try a different search or clear the filters.",
		},
	},
	ID:       func(s domain.Subject) uint { return s.ID },
	NewInput: func() Input[domain.Subject] { return &SubjectInput{} },
	Fields: []Field[domain.Subject]{
		{Name: "name", Label: "Name", Type: FieldText, Required: true, Value: func(s domain.Subject) string { return s.Name }},
		{Name: "code", Label: "Code", Type: FieldText, Required: true, Value: func(s domain.Subject) string { return s.Code }},
		{Name: "description", Label: "Description", Type: FieldTextarea, Value: func(s domain.Subject) string { return s.Description }},
		{
			Name: "status", Label: "Status", Type: FieldSelect, Required: true,
			Options: options(domain.StatusActive, domain.StatusInactive),
			Value:   func(s domain.Subject) string { return s.Status },
		},
	},
})

// PackageInput is the create and update payload of a package.
type PackageInput struct {
	Name         string `json:"name" form:"name" binding:"required,min=2,max=160"`
	SubjectID    uint   `json:"subject_id" form:"subject_id" binding:"required"`
	PriceCents   int64  `json:"price_cents" form:"price_cents" binding:"gte=0"`
	Currency     string `json:"currency" form:"currency" binding:"omitempty,iso4217"`
	ValidityDays int    `json:"validity_days" form:"validity_days" binding:"gte=0"`
	Status       string `json:"status" form:"status" binding:"required,oneof=draft published archived"`
}

func (in *PackageInput) Apply(p *domain.Package) {
	p.Name = strings.TrimSpace(in.Name)
	p.SubjectID = in.SubjectID
	p.PriceCents = in.PriceCents
	p.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	p.ValidityDays = in.ValidityDays
	p.Status = in.Status
}

var publishStatuses = []string{domain.StatusDraft, domain.StatusPublished, domain.StatusArchived}

// Packages is the package resource.
var Packages = define(Entity[domain.Package]{
	Slug:     "packages",
	Title:    "Packages",
	Singular: "package",
	Read:     domain.PermPackagesRead,
	Write:    domain.PermPackagesWrite,
	Columns: []listview.Column[domain.Package]{
		{ID: "name", Header: "Name", Sortable: true, Cell: func(p domain.Package) string { return p.Name }},
		{ID: "subject_id", Header: "Subject", Width: "6rem", Cell: func(p domain.Package) string { return "#" + uintString(p.SubjectID) }},
		{ID: "price_cents", Header: "Price", Width: "8rem", Sortable: true, Cell: domain.Package.Price},
		{ID: "validity_days", Header: "Validity", Width: "8rem", Sortable: true, Cell: func(p domain.Package) string {
			if p.ValidityDays == 0 {
				return "Lifetime"
			}
			return fmt.Sprintf("%d days", p.ValidityDays)
		}},
		{
			ID: "status", Header: "Status", Width: "7rem",
			Cell: func(p domain.Package) string { return p.Status },
			HTML: func(p domain.Package) template.HTML { return statusBadge(p.Status) },
		},
	},
	Schema: listview.Schema{
		Filters: []listview.Filter{
			statusFilter(publishStatuses...),
			{Key: "subject_id", Label: "Subject ID"},
		},
		DefaultSort: "name:asc",
	},
	SearchFields: []string{"name"},
	Empty: listview.EmptyStates{
		Initial: listview.EmptyState{
			Icon:        "package",
			Title:       "No packages yet",
			Description: "Bundle subject content into a package learners can buy.",
			Action:      &listview.Action{Label: "New package", Href: "/packages/new"},
		},
		Filtered: listview.EmptyState{
			Icon:        "search",
			Title:       "No matching packages",
			Description: "Try a different search or clear the filters.",
		},
	},
	ID:       func(p domain.Package) uint { return p.ID },
	NewInput: func() Input[domain.Package] { return &PackageInput{} },
	Fields: []Field[domain.Package]{
		{Name: "name", Label: "Name", Type: FieldText, Required: true, Value: func(p domain.Package) string { return p.Name }},
		{Name: "subject_id", Label: "Subject ID", Type: FieldNumber, Required: true, Value: func(p domain.Package) string { return uintString(p.SubjectID) }},
		{Name: "price_cents", Label: "Price (cents)", Type: FieldNumber, Value: func(p domain.Package) string { return fmt.Sprint(p.PriceCents) }},
		{Name: "currency", Label: "Currency", Type: FieldText, Value: func(p domain.Package) string { return p.Currency }},
		{Name: "validity_days", Label: "Validity (days, 0 for lifetime)", Type: FieldNumber, Value: func(p domain.Package) string { return fmt.Sprint(p.ValidityDays) }},
		{
			Name: "status", Label: "Status", Type: FieldSelect, Required: true,
			Options: options(publishStatuses...),
			Value:   func(p domain.Package) string { return p.Status },
		},
	},
})

// VideoInput is the create and update payload of a video.
type VideoInput struct {
	Title           string `json:"title" form:"title" binding:"required,min=2,max=200"`
	SubjectID       uint   `json:"subject_id" form:"subject_id" binding:"required"`
	DurationSeconds int    `json:"duration_seconds" form:"duration_seconds" binding:"gte=0"`
	Provider        string `json:"provider" form:"provider" binding:"required,oneof=vimeo youtube bunny"`
	Status          string `json:"status" form:"status" binding:"required,oneof=draft published archived"`
}

func (in *VideoInput) Apply(v *domain.Video) {
	v.Title = strings.TrimSpace(in.Title)
	v.SubjectID = in.SubjectID
	v.DurationSeconds = in.DurationSeconds
	v.Provider = in.Provider
	v.Status = in.Status
}

func formatDuration(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Videos is the video resource.
var Videos = define(Entity[domain.Video]{
	Slug:     "videos",
	Title:    "Videos",
	Singular: "video",
	Read:     domain.PermVideosRead,
	Write:    domain.PermVideosWrite,
	Columns: []listview.Column[domain.Video]{
		{ID: "title", Header: "Title", Sortable: true, Cell: func(v domain.Video) string { return v.Title }},
		{ID: "provider", Header: "Provider", Width: "7rem", Cell: func(v domain.Video) string { return v.Provider }},
		{ID: "duration_seconds", Header: "Duration", Width: "7rem", Sortable: true, Cell: func(v domain.Video) string { return formatDuration(v.DurationSeconds) }},
		{
			ID: "status", Header: "Status", Width: "7rem",
			Cell: func(v domain.Video) string { return v.Status },
			HTML: func(v domain.Video) template.HTML { return statusBadge(v.Status) },
		},
		{ID: "created_at", Header: "Added", Width: "8rem", Sortable: true, Cell: func(v domain.Video) string { return formatDate(v.CreatedAt) }},
	},
	Schema: listview.Schema{
		Filters: []listview.Filter{
			{Key: "provider", Label: "Provider", Options: options(domain.VideoProviders...)},
			statusFilter(publishStatuses...),
		},
		DefaultSort: "created_at:desc",
	},
	SearchFields: []string{"title"},
	Empty: listview.EmptyStates{
		Initial: listview.EmptyState{
			Icon:        "video",
			Title:       "No videos yet",
			Description: "Register a hosted lesson recording to make it available in packages.",
			Action:      &listview.Action{Label: "New video", Href: "/videos/new"},
		},
		Filtered: listview.EmptyState{
			Icon:        "search",
			Title:       "No matching videos",
			Description: "Try a different search or clear the filters.",
		},
	},
	ID:       func(v domain.Video) uint { return v.ID },
	NewInput: func() Input[domain.Video] { return &VideoInput{} },
	Fields: []Field[domain.Video]{
		{Name: "title", Label: "Title", Type: FieldText, Required: true, Value: func(v domain.Video) string { return v.Title }},
		{Name: "subject_id", Label: "Subject ID", Type: FieldNumber, Required: true, Value: func(v domain.Video) string { return uintString(v.SubjectID) }},
		{Name: "duration_seconds", Label: "Duration (seconds)", Type: FieldNumber, Value: func(v domain.Video) string { return fmt.Sprint(v.DurationSeconds) }},
		{
			Name: "provider", Label: "Provider", Type: FieldSelect, Required: true,
			Options: options(domain.VideoProviders...),
			Value:   func(v domain.Video) string { return v.Provider },
		},
		{
			Name: "status", Label: "Status", Type: FieldSelect, Required: true,
			Options: options(publishStatuses...),
			Value:   func(v domain.Video) string { return v.Status },
		},
	},
})

// FacultyInput is the create and update payload of an instructor.
type FacultyInput struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=120"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Designation string `json:"designation" form:"designation" binding:"max=120"`
	Status      string `json:"status" form:"status" binding:"required,oneof=active inactive"`
}

func (in *FacultyInput) Apply(f *domain.Faculty) {
	f.Name = strings.TrimSpace(in.Name)
	f.Email = strings.ToLower(strings.TrimSpace(in.Email))
	f.Designation = strings.TrimSpace(in.Designation)
	f.Status = in.Status
}

// Faculty is the instructor resource.
var Faculty = define(Entity[domain.Faculty]{
	Slug:     "faculty",
	Title:    "Faculty",
	Singular: "instructor",
	Read:     domain.PermFacultyRead,
	Write:    domain.PermFacultyWrite,
	Columns: []listview.Column[domain.Faculty]{
		{ID: "name", Header: "Name", Sortable: true, Cell: func(f domain.Faculty) string { return f.Name }},
		{ID: "email", Header: "Email", Sortable: true, Cell: func(f domain.Faculty) string { return f.Email }},
		{ID: "designation", Header: "Designation", Cell: func(f domain.Faculty) string { return f.Designation }},
		{
			ID: "status", Header: "Status", Width: "7rem",
			Cell: func(f domain.Faculty) string { return f.Status },
			HTML: func(f domain.Faculty) template.HTML { return statusBadge(f.Status) },
		},
	},
	Schema: listview.Schema{
		Filters:     []listview.Filter{statusFilter(domain.StatusActive, domain.StatusInactive)},
		DefaultSort: "name:asc",
	},
	SearchFields: []string{"name", "email", "designation"},
	Empty: listview.EmptyStates{
		Initial: listview.EmptyState{
			Icon:        "users",
			Title:       "No instructors yet",
			Description: "Add the faculty who teach your subjects.",
			Action:      &listview.Action{Label: "New instructor", Href: "/faculty/new"},
		},
		Filtered: listview.EmptyState{
			Icon:        "search",
			Title:       "No matching instructors",
			Description: "Try a different search or clear the filters.",
		},
	},
	ID:       func(f domain.Faculty) uint { return f.ID },
	NewInput: func() Input[domain.Faculty] { return &FacultyInput{} },
	Fields: []Field[domain.Faculty]{
		{Name: "name", Label: "Name", Type: FieldText, Required: true, Value: func(f domain.Faculty) string { return f.Name }},
		{Name: "email", Label: "Email", Type: FieldEmail, Required: true, Value: func(f domain.Faculty) string { return f.Email }},
		{Name: "designation", Label: "Designation", Type: FieldText, Value: func(f domain.Faculty) string { return f.Designation }},
		{
			Name: "status", Label: "Status", Type: FieldSelect, Required: true,
			Options: options(domain.StatusActive, domain.StatusInactive),
			Value:   func(f domain.Faculty) string { return f.Status },
		},
	},
})

// Users is the read-only administrator resource.
var Users = define(Entity[domain.User]{
	Slug:     "users",
	Title:    "Users",
	Singular: "user",
	Read:     domain.PermUsersRead,
	Columns: []listview.Column[domain.User]{
		{ID: "name", Header: "Name", Sortable: true, Cell: func(u domain.User) string { return u.Name }},
		{ID: "email", Header: "Email", Sortable: true, Cell: func(u domain.User) string { return u.Email }},
		{ID: "roles", Header: "Roles", Cell: func(u domain.User) string { return strings.Join(u.Roles, ", ") }},
		{
			ID: "status", Header: "Status", Width: "7rem",
			Cell: func(u domain.User) string { return u.Status },
			HTML: func(u domain.User) template.HTML { return statusBadge(u.Status) },
		},
		{ID: "created_at", Header: "Joined", Width: "8rem", Sortable: true, Cell: func(u domain.User) string { return formatDate(u.CreatedAt) }},
	},
	Schema: listview.Schema{
		Filters:     []listview.Filter{statusFilter(domain.StatusActive, domain.StatusInactive)},
		DefaultSort: "name:asc",
	},
	SearchFields: []string{"name", "email"},
	Empty: listview.EmptyStates{
		Initial:  listview.EmptyState{Icon: "users", Title: "No users yet", Description: "Run eductl seed to create the first administrator."},
		Filtered: listview.EmptyState{Icon: "search", Title: "No matching users", Description: "Try a different search or clear the filters."},
	},
	ID: func(u domain.User) uint { return u.ID },
})
