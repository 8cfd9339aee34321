package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseGameDefinition(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *GameDefinition)
	}{
		{
			name: "有效的逐步计分定义",
			yamlContent: `
id: toothbrushing
name: Toothbrushing
slot: 2
lose:
  enabled: true
steps:
  - title: Apply paste
    kind: dragToTarget
    source: {x: 0.1, y: 0.7, w: 0.2, h: 0.2}
    drop: {x: 0.4, y: 0.4, w: 0.2, h: 0.1}
  - title: Brush
    kind: directionalStroke
    region: {x: 0.25, y: 0.38, w: 0.5, h: 0.3}
  - title: Done
    kind: transition
    duration: 1.5
`,
			validate: func(t *testing.T, def *GameDefinition) {
				if def.Scoring.Strategy != ScoringPerStep {
					t.Errorf("expected default strategy perStep, got %s", def.Scoring.Strategy)
				}
				if def.ScoringStepCount() != 2 {
					t.Errorf("expected 2 scoring steps, got %d", def.ScoringStepCount())
				}
				if def.Scoring.StepPoints != 50 {
					t.Errorf("expected stepPoints 50, got %v", def.Scoring.StepPoints)
				}
				if len(def.Scoring.Penalties) != 3 || def.Scoring.Penalties[0] != 7 {
					t.Errorf("expected default penalties [7 5 3], got %v", def.Scoring.Penalties)
				}
				if def.Lose.MistakeCap != DefaultMistakeCap {
					t.Errorf("expected mistakeCap %d, got %d", DefaultMistakeCap, def.Lose.MistakeCap)
				}
				if def.HintDisplay != DefaultHintDisplay {
					t.Errorf("expected hintDisplay %v, got %v", DefaultHintDisplay, def.HintDisplay)
				}
				brush := def.Steps[1]
				if brush.Gesture.Axis != AxisVertical {
					t.Errorf("expected default vertical axis, got %s", brush.Gesture.Axis)
				}
				if brush.Target.FailureWindow != DefaultFailureWindow {
					t.Errorf("expected failureWindow %v, got %v", DefaultFailureWindow, brush.Target.FailureWindow)
				}
				if brush.Fallback != brush.Region {
					t.Errorf("expected fallback to default to region, got %+v", brush.Fallback)
				}
			},
		},
		{
			name: "未填写区域时使用整个参考区域",
			yamlContent: `
id: g
slot: 1
steps:
  - kind: circularMotion
`,
			validate: func(t *testing.T, def *GameDefinition) {
				r := def.Steps[0].Region
				if r.W != 1 || r.H != 1 {
					t.Errorf("expected full region, got %+v", r)
				}
				if math.Abs(def.Scoring.StepPoints-100) > 1e-9 {
					t.Errorf("expected 100 points for a single step, got %v", def.Scoring.StepPoints)
				}
			},
		},
		{
			name: "缺少ID",
			yamlContent: `
slot: 1
steps:
  - kind: transition
    duration: 1
`,
			wantErr:     true,
			errContains: "game id cannot be empty",
		},
		{
			name: "槽位越界",
			yamlContent: `
id: g
slot: 4
steps:
  - kind: transition
    duration: 1
`,
			wantErr:     true,
			errContains: "slot must be between 1 and 3",
		},
		{
			name: "空步骤",
			yamlContent: `
id: g
slot: 1
`,
			wantErr:     true,
			errContains: "steps cannot be empty",
		},
		{
			name: "未知步骤类型",
			yamlContent: `
id: g
slot: 1
steps:
  - kind: juggle
`,
			wantErr:     true,
			errContains: "unknown step kind",
		},
		{
			name: "遮罩步骤缺少遮罩",
			yamlContent: `
id: g
slot: 1
steps:
  - kind: pixelMaskStroke
`,
			wantErr:     true,
			errContains: "requires a mask",
		},
		{
			name: "选择步骤必须恰好一个正确选项",
			yamlContent: `
id: g
slot: 1
steps:
  - kind: choice
    choices:
      - {text: a, correct: true, region: {x: 0, y: 0, w: 0.5, h: 0.5}}
      - {text: b, correct: true, region: {x: 0.5, y: 0, w: 0.5, h: 0.5}}
`,
			wantErr:     true,
			errContains: "exactly one correct option",
		},
		{
			name: "工具不在工具栏中",
			yamlContent: `
id: g
slot: 3
requireTool: true
tools: [comb]
steps:
  - kind: circularMotion
    tool: towel
`,
			wantErr:     true,
			errContains: `tool "towel" is not in the toolbar`,
		},
		{
			name: "未知计分策略",
			yamlContent: `
id: g
slot: 1
scoring:
  strategy: lottery
steps:
  - kind: circularMotion
`,
			wantErr:     true,
			errContains: "unknown scoring strategy",
		},
		{
			name: "非法的遮罩子带",
			yamlContent: `
id: g
slot: 1
steps:
  - kind: pixelMaskStroke
    mask:
      image: a.png
      criteria: alpha
      bandMinY: 0.6
      bandMaxY: 0.4
`,
			wantErr:     true,
			errContains: "invalid mask band",
		},
		{
			name:        "YAML语法错误",
			yamlContent: "id: [unterminated",
			wantErr:     true,
			errContains: "failed to parse game definition YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ParseGameDefinition([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, def)
			}
		})
	}
}

func TestLoadGameDefinitionFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "g.yaml")
	content := "id: g\nslot: 1\nsteps:\n  - kind: circularMotion\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	def, err := LoadGameDefinition(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.ID != "g" {
		t.Errorf("expected id g, got %s", def.ID)
	}

	if _, err := LoadGameDefinition(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadGameCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"data/games/a.yaml": {Data: []byte("id: a\nslot: 1\nsteps:\n  - kind: circularMotion\n")},
		"data/games/b.yaml": {Data: []byte("id: b\nslot: 2\nsteps:\n  - kind: circularMotion\n")},
	}

	catalog, err := LoadGameCatalog(fsys, "data/games")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := catalog.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected ids [a b], got %v", ids)
	}
	if def, ok := catalog.BySlot(2); !ok || def.ID != "b" {
		t.Errorf("expected slot 2 to be b, got %v %v", def, ok)
	}
	if _, err := catalog.Get("zzz"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("expected ErrUnknownGame, got %v", err)
	}

	t.Run("重复槽位", func(t *testing.T) {
		dup := fstest.MapFS{
			"g/a.yaml": {Data: []byte("id: a\nslot: 1\nsteps:\n  - kind: circularMotion\n")},
			"g/b.yaml": {Data: []byte("id: b\nslot: 1\nsteps:\n  - kind: circularMotion\n")},
		}
		if _, err := LoadGameCatalog(dup, "g"); err == nil || !strings.Contains(err.Error(), "reuses slot") {
			t.Errorf("expected slot reuse error, got %v", err)
		}
	})

	t.Run("空目录", func(t *testing.T) {
		if _, err := LoadGameCatalog(fstest.MapFS{}, "none"); err == nil {
			t.Error("expected error for empty directory")
		}
	})
}
