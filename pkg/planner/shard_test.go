package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/depositpack/depositpack/pkg/profile"
)

func TestPlanSizeBoundedShards(t *testing.T) {
	p := New(Config{MaxItems: 100, TargetArchiveBytes: 1000})
	files := []profile.FileSize{
		{Path: "/data/set/r1.txt", Bytes: 10},
		{Path: "/data/set/big/x1.bin", Bytes: 900},
		{Path: "/data/set/big/x2.bin", Bytes: 900},
		{Path: "/data/set/small/y1.csv", Bytes: 800},
		{Path: "/data/set/small/y2.csv", Bytes: 800},
	}
	got, err := p.PlanIn("/work", files, true)
	if err != nil {
		t.Fatalf("PlanIn failed: %v", err)
	}

	wantItems := []Item{
		{Kind: KindArchive, ArchivePath: "/work/big_part01.zip", Members: []string{"/data/set/big/x1.bin"}, Mode: ModeDeflate},
		{Kind: KindArchive, ArchivePath: "/work/big_part02.zip", Members: []string{"/data/set/big/x2.bin"}, Mode: ModeDeflate},
		{Kind: KindArchive, ArchivePath: "/work/small.zip", Members: []string{"/data/set/small/y1.csv", "/data/set/small/y2.csv"}, Mode: ModeDeflate},
		{Kind: KindSingle, Path: "/data/set/r1.txt"},
	}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("PlanIn() items = %+v, want %+v", got.Items, wantItems)
	}

	wantLabels := map[string]string{
		"/work/big_part01.zip": "big",
		"/work/big_part02.zip": "big",
		"/work/small.zip":      "small",
		"/data/set/r1.txt":     "",
	}
	if !reflect.DeepEqual(got.DirLabels, wantLabels) {
		t.Errorf("DirLabels = %+v, want %+v", got.DirLabels, wantLabels)
	}
}

func TestPlanSizeBoundedRootShards(t *testing.T) {
	p := New(Config{MaxItems: 100, TargetArchiveBytes: 1000})
	files := []profile.FileSize{
		{Path: "/data/set/f1.bin", Bytes: 300},
		{Path: "/data/set/f2.bin", Bytes: 300},
		{Path: "/data/set/f3.bin", Bytes: 300},
		{Path: "/data/set/f4.bin", Bytes: 300},
		{Path: "/data/set/f5.bin", Bytes: 300},
	}
	got, err := p.PlanIn("/work", files, true)
	if err != nil {
		t.Fatalf("PlanIn failed: %v", err)
	}

	wantItems := []Item{
		{
			Kind:        KindArchive,
			ArchivePath: "/work/root_files_01.zip",
			Members:     []string{"/data/set/f1.bin", "/data/set/f2.bin", "/data/set/f3.bin"},
			Mode:        ModeDeflate,
		},
		{
			Kind:        KindArchive,
			ArchivePath: "/work/root_files_02.zip",
			Members:     []string{"/data/set/f4.bin", "/data/set/f5.bin"},
			Mode:        ModeDeflate,
		},
	}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("PlanIn() items = %+v, want %+v", got.Items, wantItems)
	}
	for _, r := range got.Report {
		if r.GroupKey != "" {
			t.Errorf("root shard %s has group key %q, want empty", r.Archive, r.GroupKey)
		}
	}
}

func TestPlanSizeBoundedRootSingles(t *testing.T) {
	p := New(Config{MaxItems: 100, MaxItemBytes: 10_000, TargetArchiveBytes: 1000})
	files := []profile.FileSize{
		{Path: "/data/set/readme.txt", Bytes: 10},
		{Path: "/data/set/a/f1.csv", Bytes: 100},
	}
	got, err := p.PlanIn("/work", files, true)
	if err != nil {
		t.Fatalf("PlanIn failed: %v", err)
	}

	wantItems := []Item{
		{Kind: KindArchive, ArchivePath: "/work/a.zip", Members: []string{"/data/set/a/f1.csv"}, Mode: ModeDeflate},
		{Kind: KindSingle, Path: "/data/set/readme.txt"},
	}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("PlanIn() items = %+v, want %+v", got.Items, wantItems)
	}
}

func TestPlanSizeBoundedMerge(t *testing.T) {
	p := New(Config{MaxItems: 2, TargetArchiveBytes: 1000})
	files := []profile.FileSize{
		{Path: "/data/set/a/f.csv", Bytes: 400},
		{Path: "/data/set/b/g.csv", Bytes: 400},
		{Path: "/data/set/c/h.csv", Bytes: 400},
	}
	got, err := p.PlanIn("/work", files, true)
	if err != nil {
		t.Fatalf("PlanIn failed: %v", err)
	}

	wantItems := []Item{
		{
			Kind:        KindArchive,
			ArchivePath: "/work/merged_001.zip",
			Members:     []string{"/data/set/a/f.csv", "/data/set/b/g.csv", "/data/set/c/h.csv"},
			Mode:        ModeDeflate,
		},
	}
	if !reflect.DeepEqual(got.Items, wantItems) {
		t.Errorf("PlanIn() items = %+v, want %+v", got.Items, wantItems)
	}
	if got.Report[0].GroupKey != "" {
		t.Errorf("merged group key = %q, want empty", got.Report[0].GroupKey)
	}
}

func TestPlanSizeBoundedTooManyItems(t *testing.T) {
	p := New(Config{MaxItems: 1, TargetArchiveBytes: 100})
	files := []profile.FileSize{
		{Path: "/data/set/a/f.bin", Bytes: 200},
		{Path: "/data/set/b/g.bin", Bytes: 200},
	}
	_, err := p.PlanIn("/work", files, true)
	if err == nil {
		t.Fatal("PlanIn succeeded, want error")
	}
	var tooMany *TooManyItemsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("error = %v, want TooManyItemsError", err)
	}
	if tooMany.Items != 2 || tooMany.Limit != 1 {
		t.Errorf("TooManyItemsError = %+v, want Items=2 Limit=1", tooMany)
	}
}

func TestPlanSizeBoundedOversizeArchive(t *testing.T) {
	p := New(Config{MaxItems: 100, MaxItemBytes: 500, TargetArchiveBytes: 400})
	files := []profile.FileSize{
		{Path: "/data/set/a/z.bin", Bytes: 1000},
	}
	_, err := p.PlanIn("/work", files, true)
	if err == nil {
		t.Fatal("PlanIn succeeded, want error")
	}
	var tooLarge *ItemTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error = %v, want ItemTooLargeError", err)
	}
	if tooLarge.Path != "a.zip" || tooLarge.Bytes != 900 || tooLarge.Limit != 500 {
		t.Errorf("ItemTooLargeError = %+v, want Path=a.zip Bytes=900 Limit=500", tooLarge)
	}
}

func TestPlanSizeBoundedOversizeRootFile(t *testing.T) {
	p := New(Config{MaxItems: 100, MaxItemBytes: 1000, TargetArchiveBytes: 1000})
	files := []profile.FileSize{
		{Path: "/data/set/big.bin", Bytes: 2000},
		{Path: "/data/set/small.bin", Bytes: 600},
	}
	_, err := p.PlanIn("/work", files, true)
	if err == nil {
		t.Fatal("PlanIn succeeded, want error")
	}
	var tooLarge *ItemTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error = %v, want ItemTooLargeError", err)
	}
	if tooLarge.Path != "root_files_01.zip" {
		t.Errorf("ItemTooLargeError path = %q, want root_files_01.zip", tooLarge.Path)
	}
}
