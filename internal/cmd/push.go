package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/internal/staging"
	"github.com/depositpack/depositpack/pkg/executor"
	"github.com/depositpack/depositpack/pkg/note"
	"github.com/depositpack/depositpack/pkg/planner"
)

// PushResult represents the staging upload results
type PushResult struct {
	Batch   string      `json:"batch"`
	Files   []PushFile  `json:"files"`
	Errors  []PushError `json:"errors"`
	Summary PushSummary `json:"summary"`
}

type PushFile struct {
	Action string `json:"action"` // "uploaded" or "skipped"
	Source string `json:"source"`
	Target string `json:"target"`
}

type PushError struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

type PushSummary struct {
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// NewPushCmd creates the push subcommand. It packs the dataset in a
// scratch directory and uploads the artifacts to an S3 staging bucket.
func NewPushCmd() *cobra.Command {
	var (
		opts            packagingOptions
		concurrency     int
		doubleZip       bool
		awsProfile      string
		region          string
		dryRun          bool
		noteFile        string
		descriptionFile string
		resultJSONFile  string
	)

	cmd := &cobra.Command{
		Use:   "push <dataset-dir> <s3-uri>",
		Short: "Pack a dataset and upload the artifacts to S3 staging",
		Long: `Push builds the planned archives in a scratch directory, uploads the final
upload set to the given s3://bucket/prefix destination under a unique batch
prefix, and removes the scratch directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if concurrency > 0 {
				s.concurrency = concurrency
			}
			return runPush(cmd, s, args[0], args[1], pushOutputs{
				doubleZip:       doubleZip,
				awsProfile:      awsProfile,
				region:          region,
				dryRun:          dryRun,
				noteFile:        noteFile,
				descriptionFile: descriptionFile,
				resultJSONFile:  resultJSONFile,
			})
		},
	}

	addPackagingFlags(cmd, &opts)
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of concurrent builds and uploads")
	cmd.Flags().BoolVar(&doubleZip, "double-zip", false, "Wrap each archive in an outer zip to survive platform-side unpacking")
	cmd.Flags().StringVar(&awsProfile, "aws-profile", "", "AWS profile to use")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (uses default if not specified)")
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Shows uploads without executing them")
	cmd.Flags().StringVar(&noteFile, "note-file", "", "Path to write the packaging note")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "Path to a dataset description included in the note")
	cmd.Flags().StringVar(&resultJSONFile, "result-json-file", "", "Path to output result as JSON file")

	return cmd
}

type pushOutputs struct {
	doubleZip       bool
	awsProfile      string
	region          string
	dryRun          bool
	noteFile        string
	descriptionFile string
	resultJSONFile  string
}

func runPush(cmd *cobra.Command, s *runSettings, root, s3URI string, out pushOutputs) error {
	start := time.Now()
	ctx := cmd.Context()

	if !strings.HasPrefix(s3URI, "s3://") {
		return fmt.Errorf("second argument must be an S3 URI (s3://bucket/prefix)")
	}
	bucket, prefix, err := staging.ParseS3URI(s3URI)
	if err != nil {
		return err
	}

	// Build config options
	var configOpts []func(*awsconfig.LoadOptions) error
	if out.awsProfile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(out.awsProfile))
	}
	if out.region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(out.region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := staging.NewAWSClient(awsCfg)

	files, total, err := s.gather(root)
	if err != nil {
		return err
	}

	pl, err := planner.New(s.plannerCfg).Plan(files, s.preserve)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	defer pl.Cleanup()

	exec := executor.New(executor.Config{
		Concurrency: s.concurrency,
		DoubleZip:   out.doubleZip,
	})
	paths, err := exec.Execute(ctx, pl)
	if err != nil {
		return fmt.Errorf("failed to build archives: %w", err)
	}

	uploader := staging.NewUploader(client, staging.Config{
		Bucket:      bucket,
		Prefix:      prefix,
		Concurrency: s.concurrency,
		DryRun:      out.dryRun,
		Logger:      s.logger,
	})

	artifacts := make([]staging.Artifact, len(paths))
	for i, p := range paths {
		artifacts[i] = staging.Artifact{Path: p, Label: pl.DirectoryLabel(p)}
	}

	results, pushErr := uploader.Push(ctx, artifacts)

	if out.resultJSONFile != "" && !out.dryRun {
		result := buildPushResult(uploader.Batch(), bucket, results)
		if err := writeJSONFile(out.resultJSONFile, result); err != nil {
			return fmt.Errorf("failed to write result JSON: %w", err)
		}
	}
	if pushErr != nil {
		return pushErr
	}

	if out.noteFile != "" {
		description, err := readDescription(out.descriptionFile)
		if err != nil {
			return err
		}
		text := note.Render(description, len(files), total, paths, pl.Report)
		if err := os.WriteFile(out.noteFile, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write packaging note: %w", err)
		}
	}

	s.logger.Info("pushed batch", "batch", uploader.Batch(), "destination", s3URI)
	s.logger.PrintSummary(len(files), total, len(paths), pl.ArchiveCount(), artifactBytes(paths), time.Since(start))
	return nil
}

func buildPushResult(batch, bucket string, results []staging.Result) PushResult {
	out := PushResult{
		Batch:  batch,
		Files:  []PushFile{},
		Errors: []PushError{},
	}

	for _, r := range results {
		target := formatS3Path(bucket, r.Key)
		if r.Err != nil {
			out.Errors = append(out.Errors, PushError{
				Source: r.Artifact.Path,
				Target: target,
				Error:  r.Err.Error(),
			})
			out.Summary.Failed++
			continue
		}
		action := "uploaded"
		if r.Skipped {
			action = "skipped"
			out.Summary.Skipped++
		} else {
			out.Summary.Uploaded++
		}
		out.Files = append(out.Files, PushFile{
			Action: action,
			Source: r.Artifact.Path,
			Target: target,
		})
	}

	return out
}

func formatS3Path(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
