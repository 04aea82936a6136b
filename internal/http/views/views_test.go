package views

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	expected := []string{
		"register.html",
		"login.html",
		"dashboard_owner.html",
		"dashboard_staff.html",
		"dashboard_admin.html",
		"admin_users.html",
		"pet_form.html",
		"pet_history.html",
		"pet_prescriptions.html",
		"book_appointment.html",
		"record_form.html",
		"reschedule_form.html",
		"prescription_form.html",
		"invoice_form.html",
		"invoices.html",
	}
	for _, page := range expected {
		if _, ok := renderer.pages[page]; !ok {
			t.Errorf("missing page template %s", page)
		}
	}

	if _, ok := renderer.pages["layout.html"]; ok {
		t.Error("the layout must not be exposed as a page")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("an unknown page is an error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := renderer.Render(&buf, "missing.html", nil); err == nil {
			t.Fatal("expected an error for an unknown template")
		}
	})

	t.Run("a page renders inside the layout", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		data := struct {
			Principal any
			Errors    map[string]string
			Messages  []string
			Form      map[string]string
			Data      any
		}{
			Form:     map[string]string{"role": "pet_owner"},
			Messages: []string{"Welcome back."},
		}
		if err := renderer.Render(&buf, "login.html", data); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		body := buf.String()
		if !strings.Contains(body, "<!DOCTYPE html>") {
			t.Fatal("expected the layout wrapper")
		}
		if !strings.Contains(body, "Welcome back.") {
			t.Fatal("expected the page message")
		}
		if !strings.Contains(body, "Log in") {
			t.Fatal("expected the login content")
		}
	})
}
