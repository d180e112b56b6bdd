package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
	"github.com/courtlab/gavel/internal/ui"
	"github.com/courtlab/gavel/internal/viewers"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func fmtTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func printSessionTable(s *model.Session) {
	fmt.Printf("ID:              %s\n", s.ID)
	fmt.Printf("Tournament:      %s\n", s.TournamentID)
	if s.Round != "" {
		fmt.Printf("Round:           %s\n", s.Round)
	}
	if s.Institution != "" {
		fmt.Printf("Institution:     %s\n", s.Institution)
	}
	fmt.Printf("Presiding Judge: %s\n", s.PresidingJudge)
	fmt.Printf("Status:          %s\n", ui.RenderState(string(s.Status)))
	if s.ActiveTurnID != "" {
		fmt.Printf("Active Turn:     %s\n", s.ActiveTurnID)
		fmt.Printf("Remaining:       %.1fs\n", s.RemainingSeconds)
		if s.TimerPausedAt != nil {
			fmt.Printf("Timer Paused At: %s\n", fmtTime(*s.TimerPausedAt))
		}
	}
	fmt.Printf("Created At:      %s\n", fmtTime(s.CreatedAt))
	if s.StartedAt != nil {
		fmt.Printf("Started At:      %s\n", fmtTime(*s.StartedAt))
	}
	if s.CompletedAt != nil {
		fmt.Printf("Completed At:    %s\n", fmtTime(*s.CompletedAt))
	}
	if s.IntegrityCheckedAt != nil {
		fmt.Printf("Last Verified:   %s\n", fmtTime(*s.IntegrityCheckedAt))
	}
}

func printSessionListTable(sessions []*model.Session, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTOURNAMENT\tROUND\tJUDGE\tCREATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Status, s.TournamentID, s.Round, s.PresidingJudge, fmtTime(s.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\n%d sessions (%d total)\n", len(sessions), total)
}

func printTurnTable(t *model.Turn) {
	fmt.Printf("ID:         %s\n", t.ID)
	fmt.Printf("Session:    %s\n", t.SessionID)
	fmt.Printf("Side:       %s\n", t.Side)
	fmt.Printf("Type:       %s\n", t.Type)
	fmt.Printf("State:      %s\n", ui.RenderState(string(t.State)))
	fmt.Printf("Allocated:  %ds\n", t.AllocatedSeconds)
	fmt.Printf("Started At: %s\n", fmtTime(t.StartedAt))
	if t.EndedAt != nil {
		fmt.Printf("Ended At:   %s\n", fmtTime(*t.EndedAt))
	}
	if t.EndReason != "" {
		fmt.Printf("End Reason: %s\n", t.EndReason)
	}
	if t.Score != nil {
		fmt.Printf("Score:      %.1f\n", *t.Score)
	}
}

func printObjectionTable(o *model.Objection) {
	fmt.Printf("ID:        %s\n", o.ID)
	fmt.Printf("Session:   %s\n", o.SessionID)
	fmt.Printf("Turn:      %s\n", o.TurnID)
	fmt.Printf("Type:      %s\n", o.Type)
	fmt.Printf("State:     %s\n", ui.RenderState(string(o.State)))
	fmt.Printf("Raised By: %s\n", o.RaisedBy)
	fmt.Printf("Raised At: %s\n", fmtTime(o.RaisedAt))
	if o.RuledBy != "" {
		fmt.Printf("Ruled By:  %s\n", o.RuledBy)
	}
	if o.RuledAt != nil {
		fmt.Printf("Ruled At:  %s\n", fmtTime(*o.RuledAt))
	}
}

func printExhibitTable(e *model.Exhibit) {
	fmt.Printf("ID:           %s\n", e.ID)
	fmt.Printf("Session:      %s\n", e.SessionID)
	fmt.Printf("Side:         %s\n", e.Side)
	fmt.Printf("State:        %s\n", ui.RenderState(string(e.State)))
	if e.Number > 0 {
		fmt.Printf("Number:       %d\n", e.Number)
	}
	fmt.Printf("Filename:     %s\n", e.Filename)
	fmt.Printf("Content Type: %s\n", e.ContentType)
	fmt.Printf("Size:         %d bytes\n", e.SizeBytes)
	fmt.Printf("Hash:         %s\n", e.ContentHash)
	if e.UploadedBy != "" {
		fmt.Printf("Uploaded By:  %s\n", e.UploadedBy)
	}
	fmt.Printf("Uploaded At:  %s\n", fmtTime(e.UploadedAt))
	if e.RuledBy != "" {
		fmt.Printf("Ruled By:     %s\n", e.RuledBy)
	}
}

func printExhibitListTable(exhibits []*model.Exhibit) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSIDE\tNUM\tSTATE\tFILENAME\tSIZE")
	for _, e := range exhibits {
		num := ""
		if e.Number > 0 {
			num = fmt.Sprintf("%d", e.Number)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.ID, e.Side, num, e.State, e.Filename, e.SizeBytes)
	}
	w.Flush()
	fmt.Printf("\n%d exhibits\n", len(exhibits))
}

func printEventsTable(entries []*model.EventLedgerEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTYPE\tHASH\tCREATED")
	for _, e := range entries {
		hash := e.Hash
		if len(hash) > 12 {
			hash = hash[:12] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Seq, e.Type, hash, fmtTime(e.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\n%d events\n", len(entries))
}

func printReportTable(r *ledger.Report) {
	fmt.Printf("Session:    %s\n", r.SessionID)
	fmt.Printf("Checked:    %d entries\n", r.Checked)
	fmt.Printf("Checked At: %s\n", fmtTime(r.CheckedAt))
	if len(r.Findings) == 0 {
		fmt.Println("Result:     OK")
		return
	}
	fmt.Printf("Result:     %d findings\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Printf("  - %s\n", f)
	}
}

func printViewersTable(sessionID string, entries []viewers.Entry) {
	if len(entries) == 0 {
		fmt.Printf("no viewers connected to %s\n", sessionID)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIEWER\tCONNECTED\tIDLE")
	for _, v := range entries {
		fmt.Fprintf(w, "%s\t%s\t%.0fs\n", v.Viewer, fmtTime(v.ConnectedAt), v.IdleSecs)
	}
	w.Flush()
	fmt.Printf("\n%d viewers\n", len(entries))
}

func printSnapshotTable(snap *courtroom.Snapshot) {
	printSessionTable(snap.Session)
	fmt.Printf("\nTurns: %d  Objections: %d  Exhibits: %d  Ledger: %d entries\n",
		len(snap.Turns), len(snap.Objections), len(snap.Exhibits), snap.LastSequence)
}
