package config

import (
	"testing"
	"time"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"12h", 12 * time.Hour},
		{"90m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{" 1D ", 24 * time.Hour},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseExpiry(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseExpiryInvalid(t *testing.T) {
	for _, in := range []string{"", "x", "10y", "abcd"} {
		if _, err := ParseExpiry(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppEnv:        "production",
			DBPassword:    "secret",
			JWTSecret:     "0123456789abcdef",
			AdminPassword: "admin-pass",
			StorageDriver: "local",
		}
	}

	if err := Validate(base(), false); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	short := base()
	short.JWTSecret = "short"
	if err := Validate(short, false); err == nil {
		t.Fatalf("expected error for short JWT secret")
	}

	missing := base()
	missing.DBPassword = " "
	if err := Validate(missing, true); err == nil {
		t.Fatalf("expected error for missing DB password")
	}

	driver := base()
	driver.AppEnv = "development"
	driver.StorageDriver = "ftp"
	if err := Validate(driver, false); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}

	dev := &Config{AppEnv: "development", StorageDriver: "minio"}
	if err := Validate(dev, false); err != nil {
		t.Fatalf("development config should not require secrets: %v", err)
	}
}

func TestGetDSN(t *testing.T) {
	c := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := c.GetDSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
