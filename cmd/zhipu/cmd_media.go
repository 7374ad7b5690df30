package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newEmbedCmd(), newTokensCmd(), newImageCmd(), newSpeakCmd(), newTranscribeCmd())
}

func newEmbedCmd() *cobra.Command {
	var texts, files []string
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Compute embedding vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(texts, files, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(cmd, true, func(ctx context.Context, a *app) error {
				res, err := a.media.Embed(ctx, inputs)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d vectors, %d dimensions (%s)\n", len(res.Vectors), res.Dimensions(), res.Model)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&texts, "text", nil, "text to embed (repeatable)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file with one text per line, - for stdin (repeatable)")
	return cmd
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <text>",
		Short: "Count prompt tokens with the vendor tokenizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				n, err := a.media.CountTokens(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]int{"prompt_tokens": n})
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func newImageCmd() *cobra.Command {
	var p zhipu.ImageParams
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Prompt = args[0]
			return run(cmd, true, func(ctx context.Context, a *app) error {
				res, err := a.media.GenerateImage(ctx, p)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				for _, u := range res.URLs {
					fmt.Fprintln(cmd.OutOrStdout(), u)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&p.Model, "model", "m", "", "image model, defaults to ZHIPU_IMAGE_MODEL")
	cmd.Flags().StringVar(&p.Size, "size", "", "image size, e.g. 1024x1024")
	cmd.Flags().StringVar(&p.Quality, "quality", "", "standard or hd")
	return cmd
}

func newSpeakCmd() *cobra.Command {
	var p zhipu.SpeechParams
	var out string
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize speech into an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Text = args[0]
			return run(cmd, true, func(ctx context.Context, a *app) error {
				file, err := a.media.Synthesize(ctx, p, out)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), file)
				}
				fmt.Fprintln(cmd.OutOrStdout(), file.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.Voice, "voice", "", "voice name")
	cmd.Flags().StringVar(&p.Format, "format", "", "wav or mp3")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, defaults to the outputs directory")
	return cmd
}

func newTranscribeCmd() *cobra.Command {
	var language, prompt string
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				res, err := a.media.TranscribeFile(ctx, args[0], language, prompt)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "spoken language hint")
	cmd.Flags().StringVar(&prompt, "prompt", "", "context prompt for the recognizer")
	return cmd
}
