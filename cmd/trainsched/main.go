// Package main is a small developer CLI for the training schedule engine:
// preview, create, move and delete scheduled workouts, and apply plan
// templates, directly against the configured backend account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/corosched/internal/config"
	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/logging"
	"github.com/2beens/corosched/internal/plans"
	"github.com/2beens/corosched/internal/profile"
	"github.com/2beens/corosched/internal/schedule"
	"github.com/2beens/corosched/internal/workout"
	"github.com/2beens/corosched/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		Environment:   *env,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     cfg.SentryDSN,
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = coros.BaseURLForRegion(cfg.Region)
	}

	client := coros.NewClient(baseURL, cfg.AccessToken, cfg.UserID, nil)
	calc := workout.NewCalculator(client)
	cache := freecache.NewCache(cfg.CacheSizeMegabytes * 1024 * 1024)

	app := &app{
		engine:  schedule.NewEngine(client, calc),
		plans:   plans.NewClient(client, calc, cache),
		profile: profile.NewService(client, cache),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %s", flag.Arg(0), err)
	}
}

type app struct {
	engine  *schedule.Engine
	plans   *plans.Client
	profile *profile.Service
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "show":
		return a.show(ctx, args)
	case "estimate":
		return a.estimate(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "move":
		return a.move(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "plans":
		return a.listPlans(ctx)
	case "apply":
		return a.apply(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: trainsched [-env ...] [-config ...] <command> [args]

commands:
  show     -from YYYY-MM-DD -to YYYY-MM-DD
  estimate -name ... -sport ... -day YYYY-MM-DD [workout flags]
  create   -name ... -sport ... -day YYYY-MM-DD [workout flags]
  move     -id N -from YYYY-MM-DD -to YYYY-MM-DD -day YYYY-MM-DD
  delete   -id N -from YYYY-MM-DD -to YYYY-MM-DD
  plans
  apply    -plan ID -start YYYY-MM-DD

workout flags (single step):
  -duration-min N | -distance-km F
  -pace-low M:SS -pace-high M:SS (min/km)
  -hr-low N -hr-high N (BPM, %%maxHR reference)
`)
}

// windowAround gives a generous fetch window for session establishment around
// a single date.
func windowAround(day int) (int, int) {
	date, _ := pkg.DayToDate(day)
	return pkg.DateToDay(date.AddDate(0, -1, 0)), pkg.DateToDay(date.AddDate(0, 1, 0))
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDay, endDay, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	sched, err := a.engine.Fetch(ctx, startDay, endDay)
	if err != nil {
		return err
	}

	for _, entity := range sched.Entities {
		program := sched.FindProgram(entity.IDInPlan)
		if program == nil {
			continue
		}
		fmt.Printf(
			"%s  #%-4d %-30s %s  %s  load %d\n",
			pkg.FormatDay(int(entity.HappenDay)),
			entity.IDInPlan,
			program.Name,
			pkg.FormatDistance(float64(program.Distance)),
			pkg.FormatDuration(program.Duration),
			program.TrainingLoad,
		)
	}
	return nil
}

func (a *app) estimate(ctx context.Context, args []string) error {
	req, err := parseWorkoutArgs(ctx, a.profile, "estimate", args)
	if err != nil {
		return err
	}

	sched, err := a.engine.Fetch(ctx, windowStart(req.HappenDay), windowEnd(req.HappenDay))
	if err != nil {
		return err
	}

	result, err := a.engine.Preview(ctx, sched.Session(), *req)
	if err != nil {
		return err
	}

	fmt.Printf(
		"estimate for [%s]: %s, %s, load %d\n",
		req.Name,
		pkg.FormatDistance(float64(result.Distance)),
		pkg.FormatDuration(result.Duration),
		result.TrainingLoad,
	)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	req, err := parseWorkoutArgs(ctx, a.profile, "create", args)
	if err != nil {
		return err
	}

	sched, err := a.engine.Fetch(ctx, windowStart(req.HappenDay), windowEnd(req.HappenDay))
	if err != nil {
		return err
	}

	result, err := a.engine.Create(ctx, sched.Session(), *req)
	if err != nil {
		return err
	}

	fmt.Printf(
		"created [%s] on %s as #%d: %s, %s, load %d\n",
		result.Name,
		pkg.FormatDay(result.HappenDay),
		result.IDInPlan,
		pkg.FormatDistance(result.PlanDistance),
		pkg.FormatDuration(result.PlanDuration),
		result.PlanTrainingLoad,
	)
	return nil
}

func (a *app) move(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	id := fs.Int64("id", 0, "idInPlan of the workout to move")
	from := fs.String("from", "", "search window start (YYYY-MM-DD)")
	to := fs.String("to", "", "search window end (YYYY-MM-DD)")
	day := fs.String("day", "", "new date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDay, endDay, err := parseRange(*from, *to)
	if err != nil {
		return err
	}
	newDay, err := pkg.ParseDay(*day)
	if err != nil {
		return err
	}

	sched, err := a.engine.Fetch(ctx, startDay, endDay)
	if err != nil {
		return err
	}

	if err := a.engine.Move(ctx, sched.Session(), *id, startDay, endDay, newDay); err != nil {
		return err
	}
	fmt.Printf("workout #%d moved to %s\n", *id, *day)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "idInPlan of the workout to delete")
	from := fs.String("from", "", "session window start (YYYY-MM-DD)")
	to := fs.String("to", "", "session window end (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDay, endDay, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	sched, err := a.engine.Fetch(ctx, startDay, endDay)
	if err != nil {
		return err
	}

	if err := a.engine.Delete(ctx, sched.Session(), *id); err != nil {
		return err
	}
	fmt.Printf("workout #%d deleted\n", *id)
	return nil
}

func (a *app) listPlans(ctx context.Context) error {
	summaries, err := a.plans.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Printf("%s  %-30s %d weeks, %d workouts\n", s.ID, s.Name, s.Weeks, s.ProgramCount)
	}
	return nil
}

func (a *app) apply(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	planID := fs.String("plan", "", "plan template id")
	start := fs.String("start", "", "first day of the plan (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDay, err := pkg.ParseDay(*start)
	if err != nil {
		return err
	}
	if *planID == "" {
		return fmt.Errorf("missing -plan")
	}

	if err := a.plans.Apply(ctx, *planID, startDay); err != nil {
		return err
	}
	fmt.Printf("plan %s applied starting %s\n", *planID, *start)
	return nil
}

func parseRange(from, to string) (int, int, error) {
	startDay, err := pkg.ParseDay(from)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -from: %w", err)
	}
	endDay, err := pkg.ParseDay(to)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -to: %w", err)
	}
	return startDay, endDay, nil
}

func windowStart(day int) int {
	start, _ := windowAround(day)
	return start
}

func windowEnd(day int) int {
	_, end := windowAround(day)
	return end
}
