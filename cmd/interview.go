package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/session"
)

const (
	commandEnd  = ":end"
	commandQuit = ":quit"
)

var errQuit = errors.New("quit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview <interview-id>",
	Short: "Start or resume an interview in the terminal",
	Long: "Start or resume an interview in the terminal.\n\n" +
		"Type " + commandEnd + " to finish the interview and get the analysis, " +
		commandQuit + " to leave it and resume later.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterview(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)
}

// answerReader asks the candidate for a reply.
type answerReader interface {
	Read(question string) (string, error)
}

type promptReader struct{}

func (promptReader) Read(string) (string, error) {
	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("the answer must not be empty")
			}
			return nil
		},
	}
	answer, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return commandQuit, nil
	}
	return answer, err
}

func runInterview(cmd *cobra.Command, interviewID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApplication()
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service(ctx, true)
	if err != nil {
		return err
	}

	return conduct(ctx, svc, promptReader{}, cmd.OutOrStdout(), a.logger, interviewID)
}

// conversation is the part of session.Service the terminal loop drives.
type conversation interface {
	Start(ctx context.Context, interviewID string) (interview.Phase, error)
	Ask(ctx context.Context, interviewID string) (session.Question, error)
	Reply(ctx context.Context, interviewID, reply string) (session.ReplyResult, error)
	End(ctx context.Context, interviewID string) (interview.Scorecard, error)
}

func conduct(ctx context.Context, svc conversation, reader answerReader, out io.Writer, log *zap.Logger, interviewID string) error {
	phase, err := svc.Start(ctx, interviewID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Interview %s (%s phase). Type %s to finish, %s to leave.\n\n", interviewID, strings.ToLower(phase.String()), commandEnd, commandQuit)

	for {
		question, err := withRetry(ctx, log, "next_question", func() (session.Question, error) {
			return svc.Ask(ctx, interviewID)
		})
		if err != nil {
			return err
		}

		err = answer(ctx, svc, reader, out, log, interviewID, question.Text)
		switch {
		case errors.Is(err, errQuit):
			fmt.Fprintf(out, "\nInterview saved. Resume it with: %s interview %s\n", app, interviewID)
			return nil
		case errors.Is(err, errEnd):
			scorecard, err := svc.End(ctx, interviewID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			printScorecard(out, scorecard)
			return nil
		case err != nil:
			return err
		}
	}
}

var errEnd = errors.New("end requested")

// answer shows question and loops until the candidate gives an answer,
// rephrasing the question whenever they ask for clarification.
func answer(ctx context.Context, svc conversation, reader answerReader, out io.Writer, log *zap.Logger, interviewID, question string) error {
	for {
		fmt.Fprintf(out, "Interviewer: %s\n", question)

		reply, err := reader.Read(question)
		if err != nil {
			return err
		}
		switch strings.TrimSpace(reply) {
		case commandQuit:
			return errQuit
		case commandEnd:
			return errEnd
		}

		result, err := withRetry(ctx, log, "classify_reply", func() (session.ReplyResult, error) {
			return svc.Reply(ctx, interviewID, reply)
		})
		if err != nil {
			return err
		}
		if result.Recorded {
			fmt.Fprintln(out)
			return nil
		}
		question = result.Rephrased
	}
}
