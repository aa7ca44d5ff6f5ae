package database

// Migrations is the ordered schema history. Append new steps; never edit one
// that has shipped.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_academic_core",
		SQL: `
CREATE TABLE programs (
	id SERIAL PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	type VARCHAR(50),
	category VARCHAR(50),
	duration VARCHAR(50),
	fees DECIMAL(10, 2),
	head_of_program VARCHAR(100),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE students (
	id VARCHAR(50) PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	program_id INTEGER REFERENCES programs(id),
	current_year VARCHAR(50),
	session_year VARCHAR(50),
	status VARCHAR(20) NOT NULL DEFAULT 'Active',
	contact_number VARCHAR(20),
	dob DATE,
	gender VARCHAR(20),
	nic VARCHAR(20),
	email VARCHAR(100),
	photo_url TEXT,
	address TEXT,
	city VARCHAR(100),
	district VARCHAR(100),
	province VARCHAR(100),
	guardian_name VARCHAR(150),
	guardian_relation VARCHAR(50),
	guardian_occupation VARCHAR(100),
	guardian_phone VARCHAR(20),
	guardian_email VARCHAR(100),
	admission_date DATE,
	previous_school VARCHAR(150),
	medium_of_study VARCHAR(50),
	last_studied_grade VARCHAR(50),
	previous_school_location VARCHAR(150),
	reason_for_leaving TEXT,
	previous_college VARCHAR(150),
	previous_college_location VARCHAR(150),
	reason_for_leaving_madrasa TEXT,
	nic_front TEXT,
	nic_back TEXT,
	student_signature TEXT,
	birth_certificate TEXT,
	medical_report TEXT,
	guardian_nic TEXT,
	guardian_photo TEXT,
	leaving_certificate TEXT,
	google_map_link TEXT,
	latitude DECIMAL(10, 8),
	longitude DECIMAL(11, 8),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE teachers (
	id SERIAL PRIMARY KEY,
	emp_id VARCHAR(50) NOT NULL,
	name VARCHAR(150) NOT NULL,
	program_id INTEGER REFERENCES programs(id),
	teacher_category VARCHAR(50),
	assigned_programs TEXT[],
	designation VARCHAR(100),
	email VARCHAR(100),
	phone VARCHAR(20),
	whatsapp VARCHAR(20),
	address TEXT,
	nic VARCHAR(20),
	dob DATE,
	gender VARCHAR(20),
	marital_status VARCHAR(20),
	joining_date DATE,
	qualification TEXT,
	degree_institute VARCHAR(150),
	grad_year VARCHAR(10),
	appointment_type VARCHAR(50),
	previous_experience TEXT,
	department VARCHAR(100),
	basic_salary DECIMAL(10, 2) NOT NULL DEFAULT 0,
	bank_name VARCHAR(100),
	account_number VARCHAR(50),
	photo_url TEXT,
	cv_url TEXT,
	certificates_url TEXT,
	nic_copy_url TEXT,
	nic_front_url TEXT,
	nic_back_url TEXT,
	birth_certificate_url TEXT,
	status VARCHAR(20) NOT NULL DEFAULT 'Active',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT teachers_emp_id_key UNIQUE (emp_id)
);

CREATE TABLE teacher_documents (
	id SERIAL PRIMARY KEY,
	teacher_id INTEGER NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
	name VARCHAR(255) NOT NULL,
	file_url TEXT NOT NULL,
	file_size VARCHAR(50),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE subjects (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	program_id INTEGER REFERENCES programs(id),
	year VARCHAR(50),
	teacher_id INTEGER REFERENCES teachers(id) ON DELETE SET NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE schedules (
	id SERIAL PRIMARY KEY,
	program_id INTEGER NOT NULL REFERENCES programs(id),
	subject_id INTEGER REFERENCES subjects(id) ON DELETE SET NULL,
	teacher_id INTEGER REFERENCES teachers(id) ON DELETE SET NULL,
	day_of_week VARCHAR(15) NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME NOT NULL,
	type VARCHAR(50) NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT schedules_time_order CHECK (start_time < end_time)
);
`,
	},
	{
		Version: 2,
		Name:    "create_attendance",
		SQL: `
CREATE TABLE student_attendance (
	id SERIAL PRIMARY KEY,
	student_id VARCHAR(50) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	status VARCHAR(20) NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT student_attendance_student_date_key UNIQUE (student_id, date)
);

CREATE TABLE teacher_attendance (
	id SERIAL PRIMARY KEY,
	teacher_id INTEGER NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	status VARCHAR(20) NOT NULL,
	check_in TIME,
	check_out TIME,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT teacher_attendance_teacher_date_key UNIQUE (teacher_id, date)
);

CREATE TABLE class_attendance (
	id SERIAL PRIMARY KEY,
	schedule_id INTEGER NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
	student_id VARCHAR(50) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	status VARCHAR(20) NOT NULL,
	remarks TEXT NOT NULL DEFAULT '',
	CONSTRAINT class_attendance_schedule_student_date_key UNIQUE (schedule_id, student_id, date)
);

CREATE TABLE class_sessions (
	id SERIAL PRIMARY KEY,
	schedule_id INTEGER NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	status VARCHAR(20) NOT NULL CHECK (status IN ('Completed', 'Cancelled')),
	notes TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT class_sessions_schedule_date_key UNIQUE (schedule_id, date)
);

CREATE INDEX class_attendance_date_idx ON class_attendance (date);
`,
	},
	{
		Version: 3,
		Name:    "create_exams",
		SQL: `
CREATE TABLE examination_slots (
	id SERIAL PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	program_id INTEGER REFERENCES programs(id) ON DELETE SET NULL,
	start_date DATE,
	end_date DATE,
	status VARCHAR(20) NOT NULL DEFAULT 'Upcoming'
);

CREATE TABLE exams (
	id SERIAL PRIMARY KEY,
	title VARCHAR(200) NOT NULL DEFAULT '',
	program_id INTEGER REFERENCES programs(id) ON DELETE SET NULL,
	subject_id INTEGER REFERENCES subjects(id) ON DELETE SET NULL,
	exam_date DATE,
	start_time TIME,
	end_time TIME,
	venue VARCHAR(150) NOT NULL DEFAULT '',
	total_marks INTEGER NOT NULL DEFAULT 100,
	supervisor_id INTEGER REFERENCES teachers(id) ON DELETE SET NULL,
	slot_id INTEGER REFERENCES examination_slots(id) ON DELETE SET NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'Upcoming',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE exam_parts (
	id SERIAL PRIMARY KEY,
	exam_id INTEGER NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
	part_no INTEGER NOT NULL,
	date DATE NOT NULL,
	start_time TIME,
	end_time TIME,
	venue VARCHAR(150) NOT NULL DEFAULT '',
	CONSTRAINT exam_parts_exam_part_key UNIQUE (exam_id, part_no)
);

CREATE TABLE exam_results (
	id SERIAL PRIMARY KEY,
	exam_id INTEGER NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
	student_id VARCHAR(50) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	marks_obtained DECIMAL(6, 2),
	grade VARCHAR(5) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'Present',
	remarks TEXT NOT NULL DEFAULT '',
	CONSTRAINT exam_results_exam_student_key UNIQUE (exam_id, student_id)
);
`,
	},
	{
		Version: 4,
		Name:    "create_calendar_events",
		SQL: `
CREATE TABLE calendar_events (
	id SERIAL PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	event_date DATE NOT NULL,
	event_type VARCHAR(30) NOT NULL DEFAULT 'success'
);
`,
	},
	{
		Version: 5,
		Name:    "create_users_and_activity_logs",
		SQL: `
CREATE TABLE users (
	id SERIAL PRIMARY KEY,
	username VARCHAR(100) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'admin',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE activity_logs (
	id BIGSERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL DEFAULT 0,
	username VARCHAR(100) NOT NULL DEFAULT '',
	action VARCHAR(20) NOT NULL,
	resource VARCHAR(50) NOT NULL DEFAULT '',
	resource_id VARCHAR(50) NOT NULL DEFAULT '',
	details JSONB,
	ip_address VARCHAR(64) NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX activity_logs_created_at_idx ON activity_logs (created_at);

CREATE TABLE log_archives (
	id SERIAL PRIMARY KEY,
	file_name VARCHAR(255) NOT NULL,
	s3_key VARCHAR(500) NOT NULL,
	start_date TIMESTAMP NOT NULL,
	end_date TIMESTAMP NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	file_size BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		Version: 6,
		Name:    "index_schedule_lookups",
		SQL: `
CREATE INDEX schedules_teacher_day_idx ON schedules (teacher_id, day_of_week);
CREATE INDEX schedules_program_day_idx ON schedules (program_id, day_of_week);
CREATE INDEX subjects_program_idx ON subjects (program_id);
`,
	},
}
