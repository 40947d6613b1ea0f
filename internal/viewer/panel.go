package viewer

import (
	"fmt"
	"strings"

	"github.com/Faultbox/twinview/internal/assets"
	"github.com/Faultbox/twinview/internal/engine/ui2d"
	"github.com/Faultbox/twinview/internal/scene"
)

// Request is a command issued from the panel.
type Request struct {
	Cmd Command
	ID  string
}

// ModelRow is the panel view of one model.
type ModelRow struct {
	Record  scene.ModelRecord
	Overlap scene.OverlapInfo
	Asset   assets.State
	Color   [3]float32
}

// PanelState is everything the panel shows in one frame.
type PanelState struct {
	Models    []ModelRow
	Names     map[string]string // id to display name
	Uploads   bool
	Browsing  bool
	Selection bool
	ShowFPS   bool
	FPS       float64
	Status    string

	// Asset cache counters shown next to the FPS.
	CacheHits, CacheMisses int
	// ID of the model under an active drag, if any.
	Dragging string
}

const (
	panelX      = 10
	panelY      = 10
	panelW      = 310
	rowStep     = 26 // row height plus spacing
	modelRows   = 7
	globalRows  = 3
	panelChrome = 20 + 16 + 8 // title bar, padding, separator
)

// panelHeight sizes the panel for n models.
func panelHeight(n int) float32 {
	return float32(panelChrome + n*(modelRows*rowStep+12) + globalRows*rowStep)
}

// OverlapText describes the overlap status of a model.
func OverlapText(info scene.OverlapInfo, names map[string]string) string {
	if !info.Overlapping {
		return "No overlap"
	}
	partners := make([]string, 0, len(info.With))
	for _, id := range info.With {
		if name, ok := names[id]; ok && name != "" {
			partners = append(partners, name)
		} else {
			partners = append(partners, id)
		}
	}
	return "Overlaps: " + strings.Join(partners, ", ")
}

// OpacityText shows a base opacity as a percentage.
func OpacityText(opacity float32) string {
	return fmt.Sprintf("Opacity: %.0f%%", opacity*100)
}

// StatsText is the frame rate and cache line.
func StatsText(st PanelState) string {
	return fmt.Sprintf("FPS: %.0f  Cache: %d hit, %d miss", st.FPS, st.CacheHits, st.CacheMisses)
}

// StatusText is the bottom line of the panel. An active drag takes
// precedence over the last status message.
func StatusText(st PanelState) string {
	if st.Dragging == "" {
		return st.Status
	}
	name := st.Names[st.Dragging]
	if name == "" {
		name = st.Dragging
	}
	return "Dragging " + name
}

// AssetText describes the load state of a model's mesh.
func AssetText(s assets.State) (string, ui2d.Color) {
	switch s {
	case assets.StateReady:
		return "Mesh: ready", ui2d.ColorTextDim
	case assets.StatePending:
		return "Mesh: loading...", ui2d.ColorWarning
	case assets.StateFailed:
		return "Mesh: failed, showing proxy", ui2d.ColorError
	}
	return "Mesh: none, showing proxy", ui2d.ColorTextDim
}

// DrawPanel draws the control panel and returns the commands clicked this
// frame.
func DrawPanel(ui *ui2d.Context, st PanelState) []Request {
	var reqs []Request
	if !ui.BeginWindow("controls", panelX, panelY, panelW, panelHeight(len(st.Models)), "Models") {
		return nil
	}
	defer ui.EndWindow()

	for _, m := range st.Models {
		rec := m.Record
		id := rec.ID
		add := func(cmd Command) { reqs = append(reqs, Request{Cmd: cmd, ID: id}) }

		ui.Row(0)
		ui.Swatch(ui2d.FromVec3(m.Color))
		title := fmt.Sprintf("%s (%s)", rec.Name, rec.Role)
		if rec.Selected {
			ui.LabelColored(title, ui2d.ColorHighlight)
		} else {
			ui.Label(title)
		}

		ui.Row(0)
		if m.Overlap.Overlapping {
			ui.LabelColored(OverlapText(m.Overlap, st.Names), ui2d.ColorWarning)
		} else {
			ui.LabelColored(OverlapText(m.Overlap, st.Names), ui2d.ColorTextDim)
		}

		ui.Row(0)
		text, color := AssetText(m.Asset)
		ui.LabelColored(text, color)

		ui.Row(0)
		if rec.Visible {
			if ui.Button(id+"_select", 86, "Select") {
				add(CmdSelect)
			}
		} else {
			ui.ButtonDisabled(id+"_select", 86, "Select")
		}
		if ui.Button(id+"_tilt", 96, "Tilt X 90") {
			add(CmdTiltX)
		}
		if ui.Button(id+"_roll", 0, "Roll Z 90") {
			add(CmdRollZ)
		}

		ui.Row(0)
		if ui.Button(id+"_turnl", 68, "Turn -45") {
			add(CmdTurnLeft)
		}
		if ui.Button(id+"_turnr", 68, "Turn +45") {
			add(CmdTurnRight)
		}
		if ui.Button(id+"_raise", 66, "Raise") {
			add(CmdRaise)
		}
		if ui.Button(id+"_lower", 0, "Lower") {
			add(CmdLower)
		}

		ui.Row(0)
		ui.Label(OpacityText(rec.Opacity))
		if ui.Button(id+"_fade", 40, "-") {
			add(CmdOpacityDown)
		}
		if ui.Button(id+"_solid", 40, "+") {
			add(CmdOpacityUp)
		}

		ui.Row(0)
		if ui.Checkbox(id+"_visible", "Visible", rec.Visible) != rec.Visible {
			add(CmdToggleVisible)
		}
		if st.Uploads {
			if st.Browsing {
				ui.ButtonDisabled(id+"_load", 0, "Load file...")
			} else if ui.Button(id+"_load", 0, "Load file...") {
				add(CmdLoadFile)
			}
		}

		ui.Separator()
	}

	ui.Row(0)
	if ui.Button("reset_camera", 140, "Reset camera") {
		reqs = append(reqs, Request{Cmd: CmdResetCamera})
	}
	if st.Selection {
		if ui.Button("focus", 0, "Focus selected") {
			reqs = append(reqs, Request{Cmd: CmdFocus})
		}
	} else {
		ui.ButtonDisabled("focus", 0, "Focus selected")
	}

	ui.Row(0)
	if st.ShowFPS {
		ui.LabelColored(StatsText(st), ui2d.ColorTextDim)
	}

	ui.Row(0)
	if status := StatusText(st); status != "" {
		ui.LabelColored(status, ui2d.ColorTextDim)
	}
	return reqs
}
