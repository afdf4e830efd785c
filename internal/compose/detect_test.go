package compose_test

import (
	"errors"
	"testing"

	"github.com/quixio/tributary/internal/compose"
	"github.com/quixio/tributary/internal/filesystems"
)

func TestLocate_PrefersCanonicalName(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("project/compose.yaml", []byte("services: {}"))
	mfs.AddFile("project/docker-compose.yml", []byte("services: {}"))

	src, err := compose.Locate(mfs, "project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Path != "project/compose.yaml" {
		t.Errorf("expected compose.yaml to win, got %s", src.Path)
	}
	if src.Dir != "project" {
		t.Errorf("expected dir 'project', got %s", src.Dir)
	}
}

func TestLocate_CaseInsensitive(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("project/Docker-Compose.yml", []byte("services: {}"))

	src, err := compose.Locate(mfs, "project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Path != "project/Docker-Compose.yml" {
		t.Errorf("expected on-disk casing, got %s", src.Path)
	}
}

func TestLocate_FindsOverride(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("app/docker-compose.yml", []byte("services: {}"))
	mfs.AddFile("app/docker-compose.override.yml", []byte("services: {}"))

	src, err := compose.Locate(mfs, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.OverridePath != "app/docker-compose.override.yml" {
		t.Errorf("expected override to be found, got %q", src.OverridePath)
	}

	files := src.Files()
	if len(files) != 2 || files[0] != src.Path || files[1] != src.OverridePath {
		t.Errorf("expected [base, override] merge order, got %v", files)
	}
}

func TestLocate_NoComposeFile(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("project/README.md", []byte("# hi"))

	_, err := compose.Locate(mfs, "project")
	if err == nil {
		t.Fatal("expected error for directory without compose file")
	}
	if !errors.Is(err, compose.ErrNoComposeFile) {
		t.Errorf("expected ErrNoComposeFile, got %v", err)
	}
}

func TestLocateBelow_RootWins(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/compose.yaml", []byte("services: {}"))
	mfs.AddFile("repo/sub/compose.yaml", []byte("services: {}"))

	src, err := compose.LocateBelow(mfs, "repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Dir != "repo" {
		t.Errorf("compose file at the root must win, got %s", src.Dir)
	}
}

func TestLocateBelow_NestedProject(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/README.md", []byte("# repo"))
	mfs.AddFile("repo/.archive/compose.yaml", []byte("services: {}"))
	mfs.AddFile("repo/node_modules/lib/compose.yaml", []byte("services: {}"))
	mfs.AddFile("repo/srv/api/compose.yaml", []byte("services: {}"))
	mfs.AddFile("repo/srv/api/deep/x/docker-compose.yml", []byte("services: {}"))

	src, err := compose.LocateBelow(mfs, "repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Dir != "repo/srv/api" {
		t.Errorf("expected nearest match outside excluded dirs, got %s", src.Dir)
	}
	if src.Path != "repo/srv/api/compose.yaml" {
		t.Errorf("unexpected path %s", src.Path)
	}
}

func TestLocateBelow_DepthTieBreaksLexically(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/zeta/compose.yaml", []byte("services: {}"))
	mfs.AddFile("repo/alpha/compose.yaml", []byte("services: {}"))

	src, err := compose.LocateBelow(mfs, "repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Dir != "repo/alpha" {
		t.Errorf("expected lexically first directory, got %s", src.Dir)
	}
}

func TestLocateBelow_NothingFound(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("repo/docs/README.md", []byte("# hi"))

	_, err := compose.LocateBelow(mfs, "repo")
	if !errors.Is(err, compose.ErrNoComposeFile) {
		t.Errorf("expected ErrNoComposeFile, got %v", err)
	}
}
