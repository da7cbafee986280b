package sandbox

import "time"

type Config struct {
	Host            string        `yaml:"host" env:"SANDBOX_HOST" env-default:"127.0.0.1"`
	Port            int           `yaml:"port" env:"SANDBOX_PORT" env-default:"8089"`
	Token           string        `yaml:"token" env:"SANDBOX_TOKEN" env-default:"sandbox-token"`
	Timeout         time.Duration `yaml:"timeout" env:"SANDBOX_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SANDBOX_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Fixture is the YAML document a sandbox is seeded from.
type Fixture struct {
	Courses []CourseFixture `yaml:"courses"`
}

type CourseFixture struct {
	ID          int64               `yaml:"id"`
	Name        string              `yaml:"name"`
	Students    []StudentFixture    `yaml:"students"`
	Assignments []AssignmentFixture `yaml:"assignments"`
}

type StudentFixture struct {
	ID        int64  `yaml:"id"`
	ShortName string `yaml:"short_name"`
}

type AssignmentFixture struct {
	ID          int64               `yaml:"id"`
	Name        string              `yaml:"name"`
	Submissions []SubmissionFixture `yaml:"submissions"`
	// RejectReviewsFor lists submission ids whose peer review creation fails
	// with a server error.
	RejectReviewsFor []int64 `yaml:"reject_reviews_for"`
}

type SubmissionFixture struct {
	ID     int64 `yaml:"id"`
	UserID int64 `yaml:"user_id"`
}
