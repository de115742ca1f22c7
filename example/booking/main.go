// Command booking validates slot values for a dental appointment
// intent. It reads one JSON turn event per line from stdin and prints
// the JSON response, the way the conversational runtime would call the
// code hook.
//
// A sample event:
//
//	{"intentName":"MakeAppointment","invocationSource":"DialogCodeHook","slots":{"AppointmentType":"cleaning","Date":"2026-09-01","Budget":null}}
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/tbxark/slotflow"
	"github.com/tbxark/slotflow/engine"
	"github.com/tbxark/slotflow/evaluate"
	"github.com/tbxark/slotflow/response"
	"github.com/tbxark/slotflow/turn"
)

func main() {
	conf := flag.String("config", "", "path to model config file, enables the model-backed Notes evaluator")
	flag.Parse()
	if err := startApp(context.Background(), *conf); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, configPath string) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	evaluators := []evaluate.Evaluator{
		evaluate.Membership(
			"AppointmentType",
			"What kind of appointment would you like, cleaning, checkup or whitening?",
			[]string{"cleaning", "checkup", "whitening"},
			evaluate.WithCanonicalization(),
		),
		evaluate.Date("Date", "What day works for you? Please use YYYY-MM-DD."),
		evaluate.Currency("Budget", "What is your budget? For example 120.00."),
	}

	if configPath != "" {
		config, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  config.APIKey,
			Model:   config.Model,
			BaseURL: config.BaseURL,
		})
		if err != nil {
			return err
		}
		notes, err := evaluate.ModelChecked(
			"Notes",
			"Anything the dentist should know ahead of time?",
			cm,
			evaluate.WithGuidance("Accept any short free-form note about the patient's situation. Reject questions and off-topic text."),
		)
		if err != nil {
			return err
		}
		evaluators = append(evaluators, evaluate.NewFailbackEvaluator(
			notes,
			evaluate.Required("Notes", "Anything the dentist should know ahead of time?"),
		))
	}

	eng, err := engine.New(engine.WithEvaluators(evaluators...))
	if err != nil {
		return err
	}
	fulfillment := slotflow.HandlerFunc(func(ctx context.Context, t *turn.Turn) (*turn.Response, error) {
		return response.Close(t, turn.Fulfilled, "Your appointment is booked."), nil
	})
	router := slotflow.NewRouter(eng, fulfillment)

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Paste one turn event per line:")
	for {
		line, rErr := reader.ReadString('\n')
		if rErr != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var t turn.Turn
		if err := sonic.UnmarshalString(line, &t); err != nil {
			fmt.Printf("bad event: %v\n", err)
			continue
		}
		resp, err := router.Route(ctx, &t)
		if err != nil {
			fmt.Printf("route failed: %v\n", err)
			continue
		}
		out, err := sonic.MarshalString(resp)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n======\n", out)
	}
	return nil
}
