package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"slippi-ranks/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Table writes the leaderboard as aligned text: one row per player with display
// tag, connect code, rank, rating and win/loss record.
func Table(w io.Writer, title string, snapshot *domain.LeaderboardSnapshot) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Updated %s\n\n", snapshot.TakenAt.In(time.UTC).Format(timeLayout)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tGamer\tCode\tRank\tElo\tW/L")
	for i, p := range snapshot.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d/%d\n", i+1, p.DisplayTag, p.Code, p.TierLabel, p.Rating, p.Wins, p.Losses)
	}
	return tw.Flush()
}
