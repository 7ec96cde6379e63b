package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Role is the closed set of account roles. Adding a role means revisiting
// every capability entry in middleware/permissions.go.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTeacher    Role = "TEACHER"
	RoleHead       Role = "HEAD"
	RoleManagement Role = "MANAGEMENT"
	RoleStudent    Role = "STUDENT"
)

// AllRoles lists every valid role.
var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleHead, RoleManagement, RoleStudent}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User model
type User struct {
	BaseModel
	Name                 string     `json:"name" gorm:"size:200;not null"`
	Email                string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password             string     `json:"-" gorm:"size:255;not null"`
	Role                 Role       `json:"role" gorm:"size:50;not null;default:'STUDENT';type:enum('ADMIN','TEACHER','HEAD','MANAGEMENT','STUDENT')"`
	PasswordResetToken   string     `json:"-" gorm:"size:255"`
	PasswordResetExpires *time.Time `json:"-"`

	// Relationships
	TeachingCourses []Course `json:"teaching_courses,omitempty" gorm:"many2many:course_teachers"`
}

// Course model
type Course struct {
	BaseModel
	Title       string `json:"title" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	// Relationships
	Teachers    []User       `json:"teachers,omitempty" gorm:"many2many:course_teachers"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID"`
	Materials   []Material   `json:"materials,omitempty" gorm:"foreignKey:CourseID"`
	Lectures    []Lecture    `json:"lectures,omitempty" gorm:"foreignKey:CourseID"`
	Meetings    []Meeting    `json:"meetings,omitempty" gorm:"foreignKey:CourseID"`
	Notices     []Notice     `json:"notices,omitempty" gorm:"foreignKey:CourseID"`
}

// Enrollment links a student to a course. The (student_id, course_id) pair is
// unique; a second enrollment attempt for the same pair must fail.
type Enrollment struct {
	BaseModel
	StudentID uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_student_course"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_student_course"`
	Status    string `json:"status" gorm:"size:50;not null;default:'active'"`

	// Relationships
	Student User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// MaterialType distinguishes study documents from recorded lecture files.
type MaterialType string

const (
	MaterialStudy    MaterialType = "STUDY_MATERIAL"
	MaterialRecorded MaterialType = "RECORDED_LECTURE"
)

func (t MaterialType) Valid() bool {
	return t == MaterialStudy || t == MaterialRecorded
}

// Material model
type Material struct {
	BaseModel
	CourseID     uint         `json:"course_id" gorm:"not null;index"`
	Title        string       `json:"title" gorm:"size:255;not null"`
	Type         MaterialType `json:"type" gorm:"size:50;not null;default:'STUDY_MATERIAL';type:enum('STUDY_MATERIAL','RECORDED_LECTURE')"`
	FileRef      string       `json:"file_ref" gorm:"size:500;not null"`
	MimeType     string       `json:"mime_type" gorm:"size:100"`
	Size         int64        `json:"size"`
	UploadedByID uint         `json:"uploaded_by_id"`

	// Relationships
	Course     Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	UploadedBy User   `json:"uploaded_by,omitempty" gorm:"foreignKey:UploadedByID"`
}

// Lecture model. The recording is attached post-hoc via a separate upload.
type Lecture struct {
	BaseModel
	CourseID     uint      `json:"course_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	ScheduledAt  time.Time `json:"scheduled_at" gorm:"not null"`
	RecordingRef string    `json:"recording_ref" gorm:"size:500"`
	CreatedByID  uint      `json:"created_by_id"`

	// Relationships
	Course    Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CreatedBy User   `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// Meeting model. JoinURL must be a Google Meet link.
type Meeting struct {
	BaseModel
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	JoinURL     string    `json:"join_url" gorm:"size:500;not null"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null"`

	// Relationships
	Course    Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CreatedBy User   `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// Notice model. A nil CourseID means a system-wide notice.
type Notice struct {
	BaseModel
	CourseID   *uint  `json:"course_id" gorm:"index"`
	Title      string `json:"title" gorm:"size:255;not null"`
	Body       string `json:"body" gorm:"type:text;not null"`
	PostedByID uint   `json:"posted_by_id" gorm:"not null"`

	// Relationships
	Course   *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	PostedBy User    `json:"posted_by,omitempty" gorm:"foreignKey:PostedByID"`
}

// ActivityLog is the append-only audit record. Rows are written as a side
// effect of mutating operations and never consulted for authorization.
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ActivityArchive tracks audit rows that were exported and pruned.
type ActivityArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error       string    `json:"error" gorm:"type:text"`
}
