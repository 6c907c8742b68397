package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/KaramelBytes/surveyloom/internal/config"
)

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	// Reset bound variables and the cached config between invocations
	cfg = nil
	compassOutput, compassWidth, compassHeight, compassMinCount = "", 0, 0, 0
	overviewOutput, overviewColumns, overviewHead = "", 3, 5
	mapOutput, mapSiteURL, mapKey, mapID, mapAssignMissing = "", "", "", "", false
	surveySheet = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func writeSurvey(t *testing.T, dir string) string {
	t.Helper()
	header := []string{"Timestamp", cfgpkg.DinnerColumn, cfgpkg.WorkplaceColumn, cfgpkg.PodcastColumn,
		cfgpkg.AGIColumn, cfgpkg.SafetyColumn, cfgpkg.SoloColumn, cfgpkg.TrainingColumn,
		cfgpkg.ResearchColumn, cfgpkg.BottleneckCol, cfgpkg.StatementColumn}
	rows := [][]string{header}
	dinners := []string{"Geoffrey Hinton", "Geoffrey Hinton", "Geoffrey Hinton", "Yoshua Bengio", "Yoshua Bengio", "Yoshua Bengio", "Ada Lovelace"}
	for i, d := range dinners {
		rows = append(rows, []string{
			"2025-12-0" + string(rune('1'+i)), d, "Academia", "Latent Space",
			string(rune('1' + i%5)), string(rune('5' - i%5)), "3", "Scale it", "Theory first", "Compute", "Scaling works",
		})
	}
	// A row without timestamp is dropped before analysis.
	rows = append(rows, []string{"", "Ada Lovelace", "Academia", "Latent Space", "5", "1", "3", "x", "y", "z", "w"})

	path := filepath.Join(dir, "survey.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write survey: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close survey: %v", err)
	}
	return path
}

func TestCLI_Compass(t *testing.T) {
	home := isolateHome(t)
	data := writeSurvey(t, home)
	png := filepath.Join(home, "out", "compass.png")

	out := runCmd(t, "compass", data, "-o", png, "--width", "200", "--height", "200")
	if _, err := os.Stat(png); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if !strings.Contains(out, "✓ Political compass chart saved as '"+png+"'") {
		t.Fatalf("missing confirmation in output:\n%s", out)
	}
	if !strings.Contains(out, "Dinner Companions analyzed: 2") {
		t.Fatalf("expected two dinner groups to pass min count:\n%s", out)
	}
	// Podcast min count is 5; all seven timestamped rows share one podcast.
	if !strings.Contains(out, "Podcasts analyzed: 1") || !strings.Contains(out, "(n=7)") {
		t.Fatalf("podcast group missing or timestamp filter not applied:\n%s", out)
	}
	if strings.Contains(out, "Ada Lovelace") {
		t.Fatalf("sparse group should be filtered:\n%s", out)
	}
}

func TestCLI_CompassCategoriesBelowMinCount(t *testing.T) {
	home := isolateHome(t)
	data := writeSurvey(t, home)
	png := filepath.Join(home, "empty", "compass.png")

	out := runCmd(t, "compass", data, "-o", png, "--width", "200", "--height", "200", "--min-count", "100")
	if _, err := os.Stat(png); err != nil {
		t.Fatalf("chart not written when every category is empty: %v", err)
	}
	for _, want := range []string{"Dinner Companions analyzed: 0", "Workplaces analyzed: 0", "Podcasts analyzed: 0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	// Only the dinner groups (three answers each) fall below a min count of 4.
	mixed := filepath.Join(home, "mixed.png")
	out = runCmd(t, "compass", data, "-o", mixed, "--width", "200", "--height", "200", "--min-count", "4")
	if _, err := os.Stat(mixed); err != nil {
		t.Fatalf("chart not written with one empty category: %v", err)
	}
	if !strings.Contains(out, "Dinner Companions analyzed: 0") || !strings.Contains(out, "Workplaces analyzed: 1") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestCLI_Overview(t *testing.T) {
	home := isolateHome(t)
	data := writeSurvey(t, home)
	png := filepath.Join(home, "overview.png")

	out := runCmd(t, "overview", data, "-o", png)
	if _, err := os.Stat(png); err != nil {
		t.Fatalf("figure not written: %v", err)
	}
	for _, want := range []string{"Dataset shape: (7, 11)", "KEY INSIGHTS", "Total Responses: 7", "Geoffrey Hinton: 3 votes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ExportMapping(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "groups.csv")
	body := "Email,UUID,Group\n" +
		"zoe@example.org,6f1c2a9e-8f5b-4c1e-9a43-2b7d1e0c4a11,1\n" +
		"amy@example.org,0b7e3c52-1d44-4f8a-8c2e-5a9f3b6d7e20,2\n" +
		"zoe@example.org,ffffffff-0000-4000-8000-000000000000,3\n"
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatalf("write groups: %v", err)
	}
	outPath := filepath.Join(home, "private", "mapping.csv")

	out := runCmd(t, "export-mapping", in, "-o", outPath, "--site-url", "https://survey.example.org/")
	if !strings.Contains(out, "✓ Exported 2 unique email-to-UUID mappings") || !strings.Contains(out, "PRIVATE") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read mapping: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d: %q", len(lines), lines)
	}
	if lines[0] != "Email,UUID,Personalized_URL" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "amy@example.org,") {
		t.Fatalf("rows not sorted by email: %q", lines[1])
	}
	want := "zoe@example.org,6f1c2a9e-8f5b-4c1e-9a43-2b7d1e0c4a11,https://survey.example.org/?uuid=6f1c2a9e-8f5b-4c1e-9a43-2b7d1e0c4a11"
	if lines[2] != want {
		t.Fatalf("first occurrence should win:\n got %q\nwant %q", lines[2], want)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "site_url", "https://survey.example.org")
	if _, err := os.Stat(filepath.Join(home, ".surveyloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "site_url: https://survey.example.org") {
		t.Fatalf("show missing saved value:\n%s", out)
	}
	cfg = nil
	c, err := requireConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c.SiteURL != "https://survey.example.org" {
		t.Fatalf("site_url not persisted: %q", c.SiteURL)
	}
	if _, err := execCmd("config", "set", "chart_width", "0"); err == nil {
		t.Fatalf("expected error for zero chart width")
	}
	if _, err := execCmd("config", "set", "no_such_key", "x"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestCLI_CompassMissingColumn(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(path, []byte("Timestamp,Other\n2025,a\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execCmd("compass", path, "-o", filepath.Join(home, "x.png")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestCompassOptions_SplitsFromConfig(t *testing.T) {
	isolateHome(t)
	cfg = nil
	c, err := requireConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opt := compassOptions(c)
	if opt.XSplit != 3 || opt.YSplit != 2.5 {
		t.Fatalf("default splits changed: %v / %v", opt.XSplit, opt.YSplit)
	}

	// A 1..7 scale keeps whatever splits the config names.
	c.ScaleMin, c.ScaleMax, c.InvertAxis2, c.XSplit, c.YSplit = 1, 7, 7, 4, 3.5
	opt = compassOptions(c)
	if opt.Min != 0.5 || opt.Max != 7.5 || opt.XSplit != 4 || opt.YSplit != 3.5 || opt.Invert != 7 {
		t.Fatalf("config not applied: %+v", opt)
	}
	cfg = nil
}
