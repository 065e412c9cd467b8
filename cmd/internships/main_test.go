package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
)

const rosterCSV = "Local;Nome;RA;Período;Nome Supervisor;Email Supervisor\n" +
	"Hospital A;Ana Souza;1001;2024.1;Dra. Lima;lima@hospital.example\n" +
	"Hospital A;Bruno Dias;1002;2024.1;Dra. Lima;lima@hospital.example\n" +
	";Carla Reis;1003;2024.1;;\n" +
	"Clínica B;;1004;2024.1;;\n"

type cliRun struct {
	t      *testing.T
	dir    string
	dbPath string
}

func newCLIRun(t *testing.T) *cliRun {
	t.Helper()
	dir := t.TempDir()
	return &cliRun{t: t, dir: dir, dbPath: filepath.Join(dir, "internships.db")}
}

func (r *cliRun) exec(args ...string) (string, string, error) {
	r.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--db", r.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (r *cliRun) mustExec(args ...string) string {
	r.t.Helper()
	out, logs, err := r.exec(args...)
	if err != nil {
		r.t.Fatalf("%v failed: %v\nlogs:\n%s", args, err, logs)
	}
	return out
}

func (r *cliRun) writeFile(name, content string) string {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestImportCommand_ReportsTalliesAndPersists(t *testing.T) {
	run := newCLIRun(t)
	roster := run.writeFile("roster.csv", rosterCSV)

	out := run.mustExec("import", roster)
	for _, want := range []string{
		"rows: 4  skipped: 1  failed: 0",
		"venues: 1 created, 0 updated, 1 reused",
		"interns: 3 created, 0 updated",
		"documents seeded: 15",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected import output to contain %q, got:\n%s", want, out)
		}
	}

	venues := run.mustExec("venues", "list")
	if !strings.Contains(venues, "Hospital A") || !strings.Contains(venues, "lima@hospital.example") {
		t.Fatalf("expected imported venue in listing, got:\n%s", venues)
	}

	interns := run.mustExec("interns", "search", "souza")
	if !strings.Contains(interns, "Ana Souza") || strings.Contains(interns, "Bruno Dias") {
		t.Fatalf("unexpected search result:\n%s", interns)
	}

	again := run.mustExec("import", roster)
	if !strings.Contains(again, "interns: 0 created, 3 updated") {
		t.Fatalf("expected second import to update in place, got:\n%s", again)
	}
}

func TestImportCommand_RejectsUnsupportedFile(t *testing.T) {
	run := newCLIRun(t)
	path := run.writeFile("roster.txt", rosterCSV)

	if _, _, err := run.exec("import", path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestCriteriaAndGradesCommands(t *testing.T) {
	run := newCLIRun(t)
	run.mustExec("import", run.writeFile("roster.csv", rosterCSV))

	created := run.mustExec("criteria", "add", "Pontualidade", "--weight", "2.5")
	if !strings.Contains(created, "criteria 1 created") {
		t.Fatalf("unexpected output: %s", created)
	}
	if _, _, err := run.exec("criteria", "add", "Zero", "--weight", "0"); err == nil {
		t.Fatal("expected a zero weight to be rejected")
	}

	list := run.mustExec("criteria", "list")
	if !strings.Contains(list, "Pontualidade") || strings.Contains(list, "Zero") {
		t.Fatalf("unexpected criteria listing:\n%s", list)
	}

	recorded := run.mustExec("grades", "record", "1", "1", "2,0")
	if !strings.Contains(recorded, ": 2") {
		t.Fatalf("unexpected grade output: %s", recorded)
	}
	if _, _, err := run.exec("grades", "record", "1", "1", "3"); err == nil {
		t.Fatal("expected a grade above the weight to be rejected")
	}
	if _, _, err := run.exec("grades", "record", "1", "1", "NaN"); err == nil {
		t.Fatal("expected a NaN grade to be rejected")
	}
	if _, _, err := run.exec("criteria", "add", "Infinita", "--weight", "+Inf"); err == nil {
		t.Fatal("expected an infinite weight to be rejected")
	}
}

func TestReportAndCalendarCommands(t *testing.T) {
	run := newCLIRun(t)
	run.mustExec("import", run.writeFile("roster.csv", rosterCSV))

	boletim := filepath.Join(run.dir, "boletim.xlsx")
	run.mustExec("report", "1", "--out", boletim)

	wb, err := excelize.OpenFile(boletim)
	if err != nil {
		t.Fatalf("failed to open boletim: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("Boletim")
	if err != nil {
		t.Fatalf("failed to read boletim rows: %v", err)
	}
	var found bool
	for _, row := range rows {
		if strings.Contains(strings.Join(row, " "), "Ana Souza") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected intern name in boletim, got %v", rows)
	}

	calendar := filepath.Join(run.dir, "meetings.ics")
	out := run.mustExec("calendar", "1", "--out", calendar)
	if !strings.Contains(out, "0 meetings") {
		t.Fatalf("unexpected calendar output: %s", out)
	}
	f, err := os.Open(calendar)
	if err != nil {
		t.Fatalf("failed to open calendar: %v", err)
	}
	defer f.Close()
	if _, err := ics.ParseCalendar(f); err != nil {
		t.Fatalf("calendar did not parse: %v", err)
	}

	if _, _, err := run.exec("report", "99", "--out", filepath.Join(run.dir, "missing.xlsx")); err == nil {
		t.Fatal("expected an unknown intern to fail")
	}
	if _, _, err := run.exec("calendar", "abc"); err == nil {
		t.Fatal("expected a malformed id to fail")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "7", want: 7},
		{in: " 12 ", want: 12},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
