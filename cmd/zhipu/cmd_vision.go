package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/internal/service/vision"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newVisionCmd())
}

func newVisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vision",
		Short: "Ask GLM-4V about images, videos and documents",
	}
	cmd.AddCommand(
		newVisionAnalyzeCmd(),
		newVisionFileCmd("describe <image>", "Describe an image", func(s *vision.Service) fileAsk { return s.DescribeImage }),
		newVisionFileCmd("video <video>", "Analyze a video with the plus model", func(s *vision.Service) fileAsk { return s.AnalyzeVideo }),
		newVisionFileCmd("document <file>", "Summarize or question a document", func(s *vision.Service) fileAsk { return s.ExtractDocument }),
		newVisionCompareCmd(),
		newVisionFormatsCmd(),
	)
	return cmd
}

type fileAsk func(ctx context.Context, path, question string) (*vision.Answer, error)

func printAnswer(cmd *cobra.Command, answer *vision.Answer) error {
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), answer)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer.Content)
	return nil
}

func newVisionFileCmd(use, short string, pick func(*vision.Service) fileAsk) *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				answer, err := pick(a.vision)(ctx, args[0], question)
				if err != nil {
					return err
				}
				return printAnswer(cmd, answer)
			})
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask, a sensible default otherwise")
	return cmd
}

func newVisionAnalyzeCmd() *cobra.Command {
	var (
		paths, urls []string
		temperature float64
		p           zhipu.VisionParams
	)
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Send text, files and URLs in one message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Text = args[0]
			}
			if cmd.Flags().Changed("temperature") {
				p.Temperature = &temperature
			}
			p.URLs = urls
			return run(cmd, true, func(ctx context.Context, a *app) error {
				for _, path := range paths {
					f, err := vision.ReadMediaFile(path)
					if err != nil {
						return err
					}
					p.Files = append(p.Files, f)
				}
				answer, err := a.vision.Analyze(ctx, p)
				if err != nil {
					return err
				}
				return printAnswer(cmd, answer)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&paths, "file", "f", nil, "local image, video or document (repeatable)")
	cmd.Flags().StringArrayVar(&urls, "url", nil, "remote image or video URL (repeatable)")
	cmd.Flags().StringVarP(&p.Model, "model", "m", "", "vision model, defaults to ZHIPU_VISION_MODEL")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature between 0 and 1")
	cmd.Flags().IntVar(&p.MaxTokens, "max-tokens", 0, "reply length limit")
	return cmd
}

func newVisionCompareCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "compare <file> <file>...",
		Short: "Compare several files in one request",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				answer, err := a.vision.Compare(ctx, args, question)
				if err != nil {
					return err
				}
				return printAnswer(cmd, answer)
			})
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "what to compare")
	return cmd
}

func newVisionFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the accepted file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), zhipu.SupportedFormats())
			}
			formats := zhipu.SupportedFormats()
			kinds := make([]string, 0, len(formats))
			for k := range formats {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %v\n", k, formats[zhipu.MediaKind(k)])
			}
			return nil
		},
	}
}
