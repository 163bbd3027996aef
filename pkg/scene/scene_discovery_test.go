package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"mirror-hall", "Mirror Hall"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		file     string
		content  string
		expected SceneInfo
	}{
		{
			file:    "complete.json",
			content: `{"name": "Glow Room", "description": "One lamp", "group": "Indoor"}`,
			expected: SceneInfo{
				Name:        "Glow Room",
				DisplayName: "Glow Room",
				Description: "One lamp",
				Group:       "Indoor",
				Type:        "file",
			},
		},
		{
			file:    "no-metadata.json",
			content: `{"primitives": []}`,
			expected: SceneInfo{
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			tc.expected.ID = "file:" + path
			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestListFileScenesIn_SkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b-scene.json": `{"name": "Beta"}`,
		"a-scene.json": `{"name": "Alpha"}`,
		"broken.json":  `{not json`,
		"notes.txt":    `ignored`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	scenes, err := ListFileScenesIn(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[0].DisplayName != "Alpha" || scenes[1].DisplayName != "Beta" {
		t.Errorf("Expected scenes sorted by display name, got %q, %q", scenes[0].DisplayName, scenes[1].DisplayName)
	}
}

func TestGroupScenes(t *testing.T) {
	fileScenes := []SceneInfo{
		{ID: "file:z.json", Name: "Z", DisplayName: "Z", Group: "Zeta", Type: "file"},
		{ID: "file:a.json", Name: "A", DisplayName: "A", Group: "Scene Files", Type: "file"},
	}

	response := groupScenes(fileScenes)
	if len(response.Groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(response.Groups))
	}
	if response.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", response.Groups[0].Name)
	}
	if len(response.Groups[0].Scenes) != len(Names()) {
		t.Errorf("Expected %d built-in scenes, got %d", len(Names()), len(response.Groups[0].Scenes))
	}
	if response.Groups[1].Name != "Scene Files" || response.Groups[2].Name != "Zeta" {
		t.Errorf("Expected remaining groups sorted, got %q, %q", response.Groups[1].Name, response.Groups[2].Name)
	}
	for _, info := range response.Groups[0].Scenes {
		if info.Type != "builtin" || info.DisplayName == "" {
			t.Errorf("Built-in scene info incomplete: %+v", info)
		}
	}
}
