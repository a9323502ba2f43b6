package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paymentops/vigil/internal/cli"
	"github.com/paymentops/vigil/internal/model"
)

func lessonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List recent decision outcomes",
		RunE:  runLessons,
	}

	cmd.Flags().IntP("limit", "n", 20, "number of lessons to show")
	cmd.Flags().Bool("summary", false, "show outcome totals instead of individual lessons")

	_ = viper.BindPFlag("lessons.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("lessons.summary", cmd.Flags().Lookup("summary"))

	return cmd
}

func runLessons(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if viper.GetBool("lessons.summary") {
		counts, countErr := store.CountLessonsByOutcome(ctx)
		if countErr != nil {
			return fmt.Errorf("failed to count lessons: %w", countErr)
		}
		fmt.Println(cli.FormatTitle("Lesson outcomes"))
		for _, outcome := range model.AllOutcomes {
			fmt.Printf("  %-15s %d\n", outcome, counts[outcome])
		}
		return nil
	}

	lessons, err := store.RecentLessons(ctx, viper.GetInt("lessons.limit"))
	if err != nil {
		return fmt.Errorf("failed to read lessons: %w", err)
	}

	if len(lessons) == 0 {
		fmt.Println(cli.FormatWarning("No lessons recorded yet. Run 'vigil cycle' first."))
		return nil
	}

	fmt.Println(cli.FormatTitle("Recent lessons"))
	for _, lesson := range lessons {
		fmt.Println("  " + cli.FormatLesson(lesson))
	}

	return nil
}
