package sources

import (
	"database/sql"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// CRMTables lists the CRM tables in tie-break order.
var CRMTables = []TableConfig{
	{
		Table:        "campaigns",
		Keywords:     []string{"campaign", "campaigns"},
		SearchFields: []string{"name", "status", "type", "campaign_owner", "phone"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "leads",
		Keywords:     []string{"lead", "leads", "prospect", "prospects"},
		SearchFields: []string{"name", "email", "phone", "lead_status", "course_list", "lead_source", "lead_owner"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "tasks",
		Keywords:     []string{"task", "tasks", "todo", "todos"},
		SearchFields: []string{"subject", "priority", "status", "task_type"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "trainers",
		Keywords:     []string{"trainer", "trainers", "instructor", "instructors"},
		SearchFields: []string{"trainer_name", "trainer_status", "tech_stack", "email", "phone", "location"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "learners",
		Keywords:     []string{"learner", "learners", "student", "students"},
		SearchFields: []string{"name", "email", "phone", "status", "course", "location"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "Course",
		Keywords:     []string{"course", "courses", "program", "programs"},
		SearchFields: []string{"title", "description", "trainer", "duration"},
		DateField:    "createdAt",
		OrderField:   "createdAt",
	},
	{
		Table:        "activity",
		Keywords:     []string{"activity", "activities", "log", "logs"},
		SearchFields: []string{"activity_name"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "notes",
		Keywords:     []string{"note", "notes", "comment", "comments"},
		SearchFields: []string{"content"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
}

// LMSTables lists the LMS tables.
var LMSTables = []TableConfig{
	{
		Table:        "lms_batches",
		Keywords:     []string{"batch", "batches", "training schedule", "schedule"},
		SearchFields: []string{"name", "title", "description", "instructor", "course_name"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
}

// RMSTables lists the RMS tables in tie-break order.
var RMSTables = []TableConfig{
	{
		Table:        "rms_candidates",
		Keywords:     []string{"candidate", "candidates", "applicant", "applicants"},
		SearchFields: []string{"name", "skills", "role", "status", "position", "location"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "rms_job_openings",
		Keywords:     []string{"job opening", "job openings", "opening", "openings", "vacancy", "vacancies"},
		SearchFields: []string{"title", "department", "location", "status"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
	{
		Table:        "rms_interviews",
		Keywords:     []string{"interview", "interviews"},
		SearchFields: []string{"candidate_name", "interviewer", "round", "status"},
		DateField:    "scheduled_at",
		OrderField:   "scheduled_at",
	},
	{
		Table:        "rms_companies",
		Keywords:     []string{"company", "companies", "client", "clients"},
		SearchFields: []string{"name", "industry", "location"},
		DateField:    "created_at",
		OrderField:   "created_at",
	},
}
// NewCRM returns the CRM repository; queries naming no table search leads.
func NewCRM(db *sql.DB, pageSize int, log *logger.Logger) *Repository {
	return NewRepository(domain.CategoryCRM, db, CRMTables, "leads", pageSize, log)
}

// NewLMS returns the LMS repository.
func NewLMS(db *sql.DB, pageSize int, log *logger.Logger) *Repository {
	return NewRepository(domain.CategoryLMS, db, LMSTables, "lms_batches", pageSize, log)
}

// NewRMS returns the RMS repository; queries naming no table search candidates.
func NewRMS(db *sql.DB, pageSize int, log *logger.Logger) *Repository {
	return NewRepository(domain.CategoryRMS, db, RMSTables, "rms_candidates", pageSize, log)
}
