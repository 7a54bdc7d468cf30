package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/database"
	"github.com/talentflow/talentflow-backend/internal/logger"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/taker"
)

const sampleTitle = "Frontend Developer Assessment"

func main() {
	jobID := flag.String("job", "job-1", "job the sample assessment belongs to")
	responses := flag.Int("responses", 0, "number of submitted sample responses to generate")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	assessments := service.NewAssessmentService(store, nil, log)

	fmt.Printf("=== Seeding %q for %s ===\n", sampleTitle, *jobID)

	existing, err := assessments.ListByJob(ctx, *jobID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list assessments")
	}
	var a *model.Assessment
	for _, s := range existing {
		if s.Title == sampleTitle {
			fmt.Printf("Found existing assessment with ID: %s\n", s.ID)
			if a, err = assessments.Get(ctx, s.ID); err != nil {
				log.Fatal().Err(err).Msg("Failed to load assessment")
			}
			break
		}
	}
	if a == nil {
		a, err = assessments.Create(ctx, *jobID, sampleAssessment())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create assessment")
		}
		fmt.Printf("Created assessment with ID: %s\n", a.ID)
	}

	if *responses <= 0 {
		fmt.Println("=== Seeding Completed ===")
		return
	}

	// Without a draft buffer the scoring service scores each submission in-line.
	scoring := service.NewScoringService(store, store, store, log)
	responseService := service.NewResponseService(store, nil, scoring, log)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	success := 0
	for i := 1; i <= *responses; i++ {
		candidateID := fmt.Sprintf("seed-candidate-%03d", i)
		ts := taker.NewStore(taker.Options{Persistence: responseService, Delay: time.Hour, Logger: log})
		if err := ts.LoadExisting(ctx, a, candidateID); err != nil {
			fmt.Printf("Failed to load %s: %v\n", candidateID, err)
			continue
		}
		if ts.Submitted() {
			fmt.Printf("Skipping %s (already submitted)\n", candidateID)
			continue
		}
		for qid, v := range sampleAnswers(a, rng) {
			if err := ts.SetAnswer(qid, v); err != nil {
				fmt.Printf("Failed to answer %s for %s: %v\n", qid, candidateID, err)
			}
		}
		id, err := ts.Submit(ctx)
		if err != nil {
			fmt.Printf("Failed to submit for %s: %v\n", candidateID, err)
			continue
		}
		fmt.Printf("Submitted response %s for %s\n", id, candidateID)
		success++
	}

	fmt.Printf("=== Seeding Completed: %d/%d responses ===\n", success, *responses)
}

func sampleAssessment() *model.CreateAssessmentRequest {
	reactID := assessment.NewID()
	usedReact := &model.ConditionalRule{DependsOn: reactID, Condition: model.ConditionEquals, Value: "Yes"}

	return &model.CreateAssessmentRequest{
		Title: sampleTitle,
		Sections: []model.Section{
			{
				Title: "Background",
				Questions: []model.Question{
					{
						ID:       reactID,
						Text:     "Do you have professional React experience?",
						Required: true,
						Spec:     model.SingleChoiceSpec{Options: []string{"Yes", "No"}, CorrectAnswer: "Yes"},
					},
					{
						Text:             "How many years of React experience do you have?",
						Required:         true,
						ConditionalLogic: usedReact,
						Spec:             model.NumericSpec{Min: floatPtr(0), Max: floatPtr(10)},
					},
					{
						Text:             "Which of these are built-in React hooks you use daily?",
						ConditionalLogic: usedReact,
						Spec: model.MultiChoiceSpec{
							Options:        []string{"useState", "useEffect", "useMemo", "useReducer"},
							CorrectAnswers: []string{"useState", "useEffect"},
						},
					},
				},
			},
			{
				Title: "Technical",
				Questions: []model.Question{
					{
						Text: "Which CSS methodology do you prefer?",
						Spec: model.TextSpec{MaxLength: intPtr(100)},
					},
					{
						Text:     "Describe a performance problem you solved in a frontend application.",
						Required: true,
						Spec:     model.TextSpec{Long: true, MaxLength: intPtr(1000)},
					},
					{
						Text: "Which of these is a module bundler?",
						Spec: model.SingleChoiceSpec{Options: []string{"Webpack", "Jest", "ESLint"}, CorrectAnswer: "Webpack"},
					},
					{
						Text: "Upload a code sample you are proud of.",
						Spec: model.FileUploadSpec{},
					},
				},
			},
		},
	}
}

var sampleExplanations = []string{
	"Memoized an expensive list render.",
	"A dashboard re-rendered on every keystroke. I moved the filter state down, memoized the rows and virtualized the table, which took input latency from 300ms to under 20ms.",
	"Split the bundle by route and lazy loaded the charting library.",
}

// sampleAnswers fills every question of a with a plausible random answer.
// Hidden questions are skipped.
func sampleAnswers(a *model.Assessment, rng *rand.Rand) model.Answers {
	out := model.Answers{}
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			switch spec := q.Spec.(type) {
			case model.SingleChoiceSpec:
				out[q.ID] = model.Text(spec.Options[rng.Intn(len(spec.Options))])
			case model.MultiChoiceSpec:
				var picked []string
				for _, o := range spec.Options {
					if rng.Intn(2) == 0 {
						picked = append(picked, o)
					}
				}
				if len(picked) > 0 {
					out[q.ID] = model.List(picked...)
				}
			case model.NumericSpec:
				out[q.ID] = model.Number(float64(rng.Intn(11)))
			case model.TextSpec:
				if spec.Long {
					out[q.ID] = model.Text(sampleExplanations[rng.Intn(len(sampleExplanations))])
				} else {
					out[q.ID] = model.Text("BEM")
				}
			}
		}
	}
	for _, sec := range a.Sections {
		visible := map[string]bool{}
		for _, q := range assessment.VisibleQuestions(sec, out) {
			visible[q.ID] = true
		}
		for _, q := range sec.Questions {
			if !visible[q.ID] {
				delete(out, q.ID)
			}
		}
	}
	return out
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }
