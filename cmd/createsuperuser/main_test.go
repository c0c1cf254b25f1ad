package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/validate"
)

func TestReportError(t *testing.T) {
	t.Parallel()

	errs := validate.Errors{}
	errs.Add("password", "La contraseña es muy corta.")
	errs.Add("email", "El correo electrónico es obligatorio.")

	var buf bytes.Buffer
	reportError(&buf, errs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "email: ") || !strings.HasPrefix(lines[1], "password: ") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	reportError(&buf, errors.New("db down"))
	if buf.String() != "create superuser: db down\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: uuid.New(), Email: "root@pawhome.org", IsStaff: true, IsSuperuser: true}

	var buf bytes.Buffer
	if err := writeOutput(&buf, "json", user, "Root"); err != nil {
		t.Fatalf("writeOutput failed: %v", err)
	}
	var got output
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.UserUUID != user.ID.String() || !got.IsSuperuser || got.AdminName != "Root" {
		t.Errorf("unexpected output %+v", got)
	}

	buf.Reset()
	if err := writeOutput(&buf, "plain", user, "Root"); err != nil {
		t.Fatalf("writeOutput failed: %v", err)
	}
	if !strings.Contains(buf.String(), user.ID.String()) {
		t.Errorf("plain output missing uuid: %q", buf.String())
	}
}
