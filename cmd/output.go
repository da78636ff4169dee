package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-compare/internal/compare"
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "Error encoding output:", err)
	}
}

func printJob(job *compare.Job) {
	if jsonOutput {
		printJSON(job)
		return
	}

	fmt.Printf("Job:      %s\n", job.ID)
	if job.State != "" {
		fmt.Printf("State:    %s\n", job.State)
	}
	fmt.Printf("Progress: %d%%\n", job.Progress)
	if job.CreatedAt != "" {
		fmt.Printf("Created:  %s\n", job.CreatedAt)
	}
	if job.IsShared {
		fmt.Println("Shared:   yes")
	}
	if job.Error != "" {
		fmt.Printf("Error:    %s\n", job.Error)
	}
	if job.Result != nil {
		fmt.Println()
		printMatches(job.Result.Details)
	}
}

func printMatches(matches []compare.Match) {
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSIMILARITY\tID\tNAME\tOCCUPATION")
	fmt.Fprintln(w, "----\t----------\t--\t----\t----------")
	for i, m := range matches {
		fmt.Fprintf(w, "%d\t%.1f%%\t%s\t%s\t%s\n",
			i+1, m.Similarity, m.Celebrity.ID, m.Celebrity.Name, m.Celebrity.Occupation)
	}
	w.Flush()
}

func printHistory(jobs []compare.Job) {
	if jsonOutput {
		printJSON(jobs)
		return
	}
	if len(jobs) == 0 {
		fmt.Println("No comparisons yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tPROGRESS\tCREATED\tSHARED\tBEST MATCH")
	fmt.Fprintln(w, "--\t-----\t--------\t-------\t------\t----------")
	for _, job := range jobs {
		shared := ""
		if job.IsShared {
			shared = "yes"
		}
		best := ""
		if m, ok := job.Result.Best(); ok {
			best = fmt.Sprintf("%s (%.1f%%)", m.Celebrity.Name, m.Similarity)
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\t%s\n",
			job.ID, job.State, job.Progress, job.CreatedAt, shared, best)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d comparisons\n", len(jobs))
}

func printCelebrities(celebrities []compare.Celebrity) {
	if jsonOutput {
		printJSON(celebrities)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNATIONALITY\tOCCUPATION\tBIRTH DATE")
	fmt.Fprintln(w, "--\t----\t-----------\t----------\t----------")
	for _, c := range celebrities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Nationality, c.Occupation, c.BirthDate)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d celebrities\n", len(celebrities))
}

func printCelebrity(c *compare.Celebrity) {
	if jsonOutput {
		printJSON(c)
		return
	}

	fmt.Printf("ID:          %s\n", c.ID)
	fmt.Printf("Name:        %s\n", c.Name)
	printField("Nationality", c.Nationality)
	printField("Occupation", c.Occupation)
	printField("Birth date", c.BirthDate)
	printField("Works", c.Works)
	printField("Photo", c.PhotoURL)
	printField("Detail", c.DetailURL)
	if c.Description != "" {
		fmt.Printf("\n%s\n", c.Description)
	}
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-12s %s\n", label+":", value)
}
