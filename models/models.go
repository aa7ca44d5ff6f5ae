package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// Program is a course of study (e.g. "Grade 1-5", "A/L Science").
type Program struct {
	BaseModel
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Category      string   `json:"category"`
	Duration      string   `json:"duration"`
	Fees          *float64 `json:"fees"`
	HeadOfProgram string   `json:"head_of_program"`
}

func (Program) TableName() string { return "programs" }

// Student is keyed by its index number.
type Student struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name"`
	ProgramID     *uint      `json:"program_id"`
	CurrentYear   string     `json:"current_year"`
	SessionYear   string     `json:"session_year"`
	Status        string     `json:"status"`
	ContactNumber string     `json:"contact_number"`
	DOB           *Date      `json:"dob" gorm:"column:dob"`
	Gender        string     `json:"gender"`
	NIC           string     `json:"nic" gorm:"column:nic"`
	Email         string     `json:"email"`
	PhotoURL      *string    `json:"photo_url" gorm:"column:photo_url"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	District      string     `json:"district"`
	Province      string     `json:"province"`
	AdmissionDate *Date      `json:"admission_date"`
	CreatedAt     time.Time  `json:"created_at"`

	GuardianName       string `json:"guardian_name"`
	GuardianRelation   string `json:"guardian_relation"`
	GuardianOccupation string `json:"guardian_occupation"`
	GuardianPhone      string `json:"guardian_phone"`
	GuardianEmail      string `json:"guardian_email"`

	PreviousSchool          string `json:"previous_school"`
	MediumOfStudy           string `json:"medium_of_study"`
	LastStudiedGrade        string `json:"last_studied_grade"`
	PreviousSchoolLocation  string `json:"previous_school_location"`
	ReasonForLeaving        string `json:"reason_for_leaving"`
	PreviousCollege         string `json:"previous_college"`
	PreviousCollegeLocation string `json:"previous_college_location"`
	ReasonForLeavingMadrasa string `json:"reason_for_leaving_madrasa"`

	NICFront           *string `json:"nic_front" gorm:"column:nic_front"`
	NICBack            *string `json:"nic_back" gorm:"column:nic_back"`
	StudentSignature   *string `json:"student_signature"`
	BirthCertificate   *string `json:"birth_certificate"`
	MedicalReport      *string `json:"medical_report"`
	GuardianNIC        *string `json:"guardian_nic" gorm:"column:guardian_nic"`
	GuardianPhoto      *string `json:"guardian_photo"`
	LeavingCertificate *string `json:"leaving_certificate"`

	GoogleMapLink *string  `json:"google_map_link"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`

	Program *Program `json:"-" gorm:"foreignKey:ProgramID"`
}

func (Student) TableName() string { return "students" }

// Teacher is a member of staff; EmpID is unique.
type Teacher struct {
	BaseModel
	EmpID              string         `json:"emp_id" gorm:"column:emp_id"`
	Name               string         `json:"name"`
	ProgramID          *uint          `json:"program_id"`
	TeacherCategory    string         `json:"teacher_category"`
	AssignedPrograms   pq.StringArray `json:"assigned_programs" gorm:"type:text[]"`
	Designation        string         `json:"designation"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	Whatsapp           string         `json:"whatsapp"`
	Address            string         `json:"address"`
	NIC                string         `json:"nic" gorm:"column:nic"`
	DOB                *Date          `json:"dob" gorm:"column:dob"`
	Gender             string         `json:"gender"`
	MaritalStatus      string         `json:"marital_status"`
	JoiningDate        *Date          `json:"joining_date"`
	Qualification      string         `json:"qualification"`
	DegreeInstitute    string         `json:"degree_institute"`
	GradYear           string         `json:"grad_year"`
	AppointmentType    string         `json:"appointment_type"`
	PreviousExperience string         `json:"previous_experience"`
	Department         string         `json:"department"`
	BasicSalary        float64        `json:"basic_salary"`
	BankName           string         `json:"bank_name"`
	AccountNumber      string         `json:"account_number"`
	Status             string         `json:"status"`

	PhotoURL            *string `json:"photo_url" gorm:"column:photo_url"`
	CVURL               *string `json:"cv_url" gorm:"column:cv_url"`
	CertificatesURL     *string `json:"certificates_url" gorm:"column:certificates_url"`
	NICCopyURL          *string `json:"nic_copy_url" gorm:"column:nic_copy_url"`
	NICFrontURL         *string `json:"nic_front_url" gorm:"column:nic_front_url"`
	NICBackURL          *string `json:"nic_back_url" gorm:"column:nic_back_url"`
	BirthCertificateURL *string `json:"birth_certificate_url" gorm:"column:birth_certificate_url"`
}

func (Teacher) TableName() string { return "teachers" }

type TeacherDocument struct {
	BaseModel
	TeacherID uint   `json:"teacher_id"`
	Name      string `json:"name"`
	FileURL   string `json:"file_url" gorm:"column:file_url"`
	FileSize  string `json:"file_size"`
}

func (TeacherDocument) TableName() string { return "teacher_documents" }

// Subject belongs to a program and a cohort label (Year), e.g. "Grade 1".
type Subject struct {
	BaseModel
	Name      string `json:"name"`
	ProgramID *uint  `json:"program_id"`
	Year      string `json:"year"`
	TeacherID *uint  `json:"teacher_id"`
}

func (Subject) TableName() string { return "subjects" }

// Schedule is a recurring weekly slot.
type Schedule struct {
	BaseModel
	ProgramID uint      `json:"program_id"`
	SubjectID *uint     `json:"subject_id"`
	TeacherID *uint     `json:"teacher_id"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
	Type      string    `json:"type"`
}

func (Schedule) TableName() string { return "schedules" }

// User holds login credentials; Password is a bcrypt hash.
type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

func (User) TableName() string { return "users" }

// ActivityLog model
type ActivityLog struct {
	BaseModel
	UserID     uint           `json:"user_id"`
	Username   string         `json:"username"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name"`
	S3Key       string    `json:"s3_key" gorm:"column:s3_key"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	RecordCount int       `json:"record_count"`
	FileSize    int64     `json:"file_size"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

func (LogArchive) TableName() string { return "log_archives" }
