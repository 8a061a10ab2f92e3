package logger

import (
	"log/slog"
	"testing"
)

func TestRedactPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/location-update/hunter2/u1/52.5/13.4", "/location-update/***/u1/52.5/13.4"},
		{"/data-update/hunter2/u1/52.5/13.4/80", "/data-update/***/u1/52.5/13.4/80"},
		{"/data-update/hunter2", "/data-update/***"},
		{"/latest/locations", "/latest/locations"},
		{"/health", "/health"},
		{"location-update/x/y", "location-update/x/y"},
	}
	for _, tt := range tests {
		if got := RedactPath(tt.in); got != tt.want {
			t.Errorf("RedactPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"password key", slog.String("password", "hunter2"), redactedValue},
		{"authorization header", slog.String("Authorization", "Bearer x"), redactedValue},
		{"password hash", slog.String("password_hash", "$argon2id$..."), redactedValue},
		{"empty secret kept", slog.String("secret", ""), ""},
		{"path value", slog.String("path", "/location-update/pw/u1/1/2"), "/location-update/***/u1/1/2"},
		{"plain value", slog.String("user_id", "u1"), "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactSensitive(tt.attr).Value.String(); got != tt.want {
				t.Errorf("redactSensitive(%v) = %q, want %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	attr := slog.Group("request", slog.String("password", "pw"), slog.String("method", "GET"))
	got := redactSensitive(attr).Value.Group()
	if got[0].Value.String() != redactedValue {
		t.Errorf("nested password = %q", got[0].Value.String())
	}
	if got[1].Value.String() != "GET" {
		t.Errorf("nested method = %q", got[1].Value.String())
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"password":      true,
		"PASSWORD_HASH": true,
		"client_secret": true,
		"authorization": true,
		"user_id":       false,
		"latitude":      false,
	} {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}
