package executor

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/depositpack/depositpack/pkg/planner"
	"github.com/depositpack/depositpack/pkg/profile"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

func readZipMembers(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open archive %s: %v", path, err)
	}
	defer zr.Close()
	members := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open member %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read member %s: %v", f.Name, err)
		}
		members[f.Name] = string(data)
	}
	return members
}

func TestExecuteBuildsArchives(t *testing.T) {
	dataDir := t.TempDir()
	writeTestFile(t, filepath.Join(dataDir, "a", "one.csv"), "one")
	writeTestFile(t, filepath.Join(dataDir, "a", "two.csv"), "two")
	writeTestFile(t, filepath.Join(dataDir, "b", "three.csv"), "three")

	files, _ := profile.Profile([]string{
		filepath.Join(dataDir, "a", "one.csv"),
		filepath.Join(dataDir, "a", "two.csv"),
		filepath.Join(dataDir, "b", "three.csv"),
	})
	p := planner.New(planner.Config{MaxItems: 100, Workdir: t.TempDir()})
	plan, err := p.Plan(files, true)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	defer plan.Cleanup()

	paths, err := New(Config{}).Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{
		filepath.Join(plan.Workdir, "a.zip"),
		filepath.Join(plan.Workdir, "b.zip"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Execute() = %v, want %v", paths, want)
	}

	gotA := readZipMembers(t, paths[0])
	wantA := map[string]string{"one.csv": "one", "two.csv": "two"}
	if !reflect.DeepEqual(gotA, wantA) {
		t.Errorf("a.zip members = %v, want %v", gotA, wantA)
	}
	gotB := readZipMembers(t, paths[1])
	wantB := map[string]string{"three.csv": "three"}
	if !reflect.DeepEqual(gotB, wantB) {
		t.Errorf("b.zip members = %v, want %v", gotB, wantB)
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	content := strings.Repeat("0123456789", 1_000_000)
	var inputs []string
	for i := 1; i <= 5; i++ {
		path := filepath.Join(dataDir, fmt.Sprintf("f%d.csv", i))
		writeTestFile(t, path, content)
		inputs = append(inputs, path)
	}

	files, total := profile.Profile(inputs)
	if total != 50_000_000 {
		t.Fatalf("profiled total = %d, want 50000000", total)
	}

	p := planner.New(planner.Config{MaxItems: 10, MaxItemBytes: 1_000_000_000, Workdir: t.TempDir()})
	plan, err := p.Plan(files, false)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	defer plan.Cleanup()
	if plan.ArchiveCount() != 1 || plan.SingleCount() != 0 {
		t.Fatalf("plan = %d archives, %d singles, want 1 and 0", plan.ArchiveCount(), plan.SingleCount())
	}

	paths, err := New(Config{Concurrency: 4}).Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("Execute() = %v, want a single archive", paths)
	}

	zr, err := zip.OpenReader(paths[0])
	if err != nil {
		t.Fatalf("Failed to open archive %s: %v", paths[0], err)
	}
	defer zr.Close()

	var names []string
	var extracted uint64
	for _, f := range zr.File {
		names = append(names, f.Name)
		extracted += f.UncompressedSize64
	}
	wantNames := []string{"f1.csv", "f2.csv", "f3.csv", "f4.csv", "f5.csv"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("members = %v, want %v", names, wantNames)
	}
	if extracted != 50_000_000 {
		t.Errorf("extracted size = %d, want 50000000", extracted)
	}
}

func TestExecuteOrderPreservation(t *testing.T) {
	dataDir := t.TempDir()
	workdir := t.TempDir()

	big := filepath.Join(dataDir, "big.csv")
	writeTestFile(t, big, strings.Repeat("x", 3_000_000))
	small1 := filepath.Join(dataDir, "s1.csv")
	writeTestFile(t, small1, "tiny one")
	small2 := filepath.Join(dataDir, "s2.csv")
	writeTestFile(t, small2, "tiny two")
	single := filepath.Join(dataDir, "keep.bin")
	writeTestFile(t, single, "as-is")

	plan := &planner.Plan{
		Items: []planner.Item{
			{Kind: planner.KindArchive, ArchivePath: filepath.Join(workdir, "one.zip"), Members: []string{big}, Mode: planner.ModeDeflate},
			{Kind: planner.KindSingle, Path: single},
			{Kind: planner.KindArchive, ArchivePath: filepath.Join(workdir, "two.zip"), Members: []string{small1}, Mode: planner.ModeStore},
			{Kind: planner.KindArchive, ArchivePath: filepath.Join(workdir, "three.zip"), Members: []string{small2}, Mode: planner.ModeDeflate},
		},
		Workdir:   workdir,
		DirLabels: map[string]string{},
	}
	want := []string{
		filepath.Join(workdir, "one.zip"),
		single,
		filepath.Join(workdir, "two.zip"),
		filepath.Join(workdir, "three.zip"),
	}

	for i := 0; i < 3; i++ {
		paths, err := New(Config{Concurrency: 3}).Execute(context.Background(), plan)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("Execute() = %v, want %v", paths, want)
		}
	}
}

func TestExecuteFailure(t *testing.T) {
	workdir := t.TempDir()
	plan := &planner.Plan{
		Items: []planner.Item{
			{
				Kind:        planner.KindArchive,
				ArchivePath: filepath.Join(workdir, "broken.zip"),
				Members:     []string{filepath.Join(workdir, "missing.csv")},
				Mode:        planner.ModeDeflate,
			},
		},
		Workdir:   workdir,
		DirLabels: map[string]string{},
	}

	paths, err := New(Config{}).Execute(context.Background(), plan)
	if err == nil {
		t.Fatal("Execute succeeded, want error")
	}
	if paths != nil {
		t.Errorf("Execute() paths = %v, want nil on failure", paths)
	}
	if !strings.Contains(err.Error(), "broken.zip") {
		t.Errorf("error %q does not name the failed archive", err)
	}
}

func TestExecuteDoubleZip(t *testing.T) {
	dataDir := t.TempDir()
	writeTestFile(t, filepath.Join(dataDir, "a", "one.csv"), "one")
	writeTestFile(t, filepath.Join(dataDir, "readme.txt"), "about")

	files, _ := profile.Profile([]string{
		filepath.Join(dataDir, "a", "one.csv"),
		filepath.Join(dataDir, "readme.txt"),
	})
	p := planner.New(planner.Config{MaxItems: 100, Workdir: t.TempDir()})
	plan, err := p.Plan(files, true)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	defer plan.Cleanup()

	paths, err := New(Config{DoubleZip: true}).Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	wantOuter := filepath.Join(plan.Workdir, "a_outer.zip")
	want := []string{wantOuter, filepath.Join(plan.Workdir, "root_files_outer.zip")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Execute() = %v, want %v", paths, want)
	}
	if got := plan.DirLabels[wantOuter]; got != "a" {
		t.Errorf("outer label = %q, want %q", got, "a")
	}

	outer := readZipMembers(t, wantOuter)
	inner, ok := outer["a.zip"]
	if !ok || len(outer) != 1 {
		t.Fatalf("outer members = %v, want only a.zip", outer)
	}
	zr, err := zip.NewReader(strings.NewReader(inner), int64(len(inner)))
	if err != nil {
		t.Fatalf("Failed to read nested archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "one.csv" {
		t.Errorf("nested members = %v, want one.csv", zr.File)
	}
}

func TestExecuteContextCanceled(t *testing.T) {
	workdir := t.TempDir()
	dataDir := t.TempDir()
	member := filepath.Join(dataDir, "a.csv")
	writeTestFile(t, member, "data")

	plan := &planner.Plan{
		Items: []planner.Item{
			{
				Kind:        planner.KindArchive,
				ArchivePath: filepath.Join(workdir, "a.zip"),
				Members:     []string{member},
				Mode:        planner.ModeDeflate,
			},
		},
		Workdir:   workdir,
		DirLabels: map[string]string{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := New(Config{}).Execute(ctx, plan)
	if err == nil {
		t.Fatal("Execute succeeded, want error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if paths != nil {
		t.Errorf("Execute() paths = %v, want nil", paths)
	}
}

func TestExecuteEmptyPlan(t *testing.T) {
	plan := &planner.Plan{Workdir: t.TempDir(), DirLabels: map[string]string{}}
	paths, err := New(Config{}).Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Execute() = %v, want no paths", paths)
	}
}
