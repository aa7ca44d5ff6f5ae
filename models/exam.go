package models

const (
	ExamUpcoming  = "Upcoming"
	ExamOngoing   = "Ongoing"
	ExamCompleted = "Completed"
	ExamCancelled = "Cancelled"
)

// Exam mirrors its first part's date, times and venue.
type Exam struct {
	BaseModel
	Title        string     `json:"title"`
	ProgramID    *uint      `json:"program_id"`
	SubjectID    *uint      `json:"subject_id"`
	ExamDate     *Date      `json:"exam_date"`
	StartTime    *TimeOfDay `json:"start_time"`
	EndTime      *TimeOfDay `json:"end_time"`
	Venue        string     `json:"venue"`
	TotalMarks   int        `json:"total_marks"`
	SupervisorID *uint      `json:"supervisor_id"`
	SlotID       *uint      `json:"slot_id"`
	Status       string     `json:"status"`

	Parts []ExamPart `json:"parts,omitempty" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string { return "exams" }

type ExamPart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	ExamID    uint       `json:"exam_id"`
	PartNo    int        `json:"part_no"`
	Date      Date       `json:"date"`
	StartTime *TimeOfDay `json:"start_time"`
	EndTime   *TimeOfDay `json:"end_time"`
	Venue     string     `json:"venue"`
}

func (ExamPart) TableName() string { return "exam_parts" }

type ExamResult struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	ExamID        uint     `json:"exam_id"`
	StudentID     string   `json:"student_id"`
	MarksObtained *float64 `json:"marks_obtained"`
	Grade         string   `json:"grade"`
	Status        string   `json:"status"`
	Remarks       string   `json:"remarks"`
}

func (ExamResult) TableName() string { return "exam_results" }

type ExaminationSlot struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name"`
	ProgramID *uint  `json:"program_id"`
	StartDate *Date  `json:"start_date"`
	EndDate   *Date  `json:"end_date"`
	Status    string `json:"status"`
}

func (ExaminationSlot) TableName() string { return "examination_slots" }

type CalendarEvent struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   Date   `json:"event_date"`
	EventType   string `json:"event_type"`
}

func (CalendarEvent) TableName() string { return "calendar_events" }
