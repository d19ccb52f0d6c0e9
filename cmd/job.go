package main

import (
	"context"
	"encoding/json"
	"fmt"

	"parking-lot-manager/cmd/bootstrap"
	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/usecase/jobs"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var jobParams string

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Operate background jobs",
}

var jobRunCmd = &cobra.Command{
	Use:       "run <kind>",
	Short:     "Run one job synchronously and print its record",
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := job.ParseKind(args[0])
		if err != nil {
			return err
		}
		var params json.RawMessage
		if jobParams != "" {
			if !json.Valid([]byte(jobParams)) {
				return fmt.Errorf("--params is not valid JSON")
			}
			params = json.RawMessage(jobParams)
		}

		var uc jobs.JobUseCase
		app := fx.New(
			bootstrap.CoreModule,
			fx.Populate(&uc),
			fx.NopLogger,
		)
		ctx := cmd.Context()
		if err := app.Start(ctx); err != nil {
			return err
		}
		// Stopping drains the notifier so events raised by the job are delivered.
		defer func() { _ = app.Stop(context.Background()) }()

		j, err := uc.Execute(ctx, kind, params)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(map[string]any{
			"id":            j.ID(),
			"kind":          j.Kind(),
			"status":        j.Status(),
			"attempts":      j.Attempts(),
			"result":        j.Result(),
			"error_code":    j.ErrorCode(),
			"error_message": j.ErrorMessage(),
		}, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		if j.Status() == job.StatusFailed {
			return fmt.Errorf("job %d failed: %s", j.ID(), j.ErrorCode())
		}
		return nil
	},
}

func kindNames() []string {
	names := make([]string, len(job.Kinds))
	for i, k := range job.Kinds {
		names[i] = k.String()
	}
	return names
}

func init() {
	jobRunCmd.Flags().StringVar(&jobParams, "params", "", "JSON parameters passed to the job")
	jobCmd.AddCommand(jobRunCmd)
}
