// Package digest builds the scheduled jobs: learning digests per topic, a
// tech news update and a programming meme.
package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digestbot/internal/content"
	"digestbot/internal/notifier"
	"digestbot/internal/task/scheduler"
	logx "digestbot/pkg/logx"
)

type Kind string

const (
	KindLearn Kind = "learn"
	KindNews  Kind = "news"
	KindMeme  Kind = "meme"
)

func (k Kind) Valid() bool {
	switch k {
	case KindLearn, KindNews, KindMeme:
		return true
	}
	return false
}

const (
	LearnTitlePrefix = "💻 Learn"
	NewsTitle        = "🌐 Tech News Update"
	MemeTitle        = "😂 Programming Meme"
)

// Spec describes one job as configured.
type Spec struct {
	Name    string
	Kind    Kind
	Trigger string
	// Topics are required for learn jobs and ignored otherwise.
	Topics []string
	// Title overrides the notification title. For learn jobs it is the
	// prefix placed before the topic.
	Title string
	// Prompt overrides the built-in prompt. For learn jobs "%s" is the topic.
	Prompt string
	Image  string
}

// Generator produces a notification body; it never returns an empty body.
type Generator interface {
	Generate(ctx context.Context, req content.Request) (string, error)
}

// Deliverer sends one notification.
type Deliverer interface {
	Deliver(ctx context.Context, p notifier.Payload) error
}

// Builder turns Specs into scheduler jobs.
type Builder struct {
	gen Generator
	out Deliverer
	loc *time.Location
	log logx.Logger
}

func NewBuilder(gen Generator, out Deliverer, loc *time.Location, log logx.Logger) *Builder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Builder{gen: gen, out: out, loc: loc, log: log}
}

// Build validates every spec and returns the jobs in spec order.
func (b *Builder) Build(specs []Spec) ([]scheduler.Job, error) {
	jobs := make([]scheduler.Job, 0, len(specs))
	for i, sp := range specs {
		j, err := b.job(sp)
		if err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (b *Builder) job(sp Spec) (scheduler.Job, error) {
	name := strings.TrimSpace(sp.Name)
	if name == "" {
		return scheduler.Job{}, errors.New("name required")
	}
	if !sp.Kind.Valid() {
		return scheduler.Job{}, fmt.Errorf("%s: unknown kind %q", name, sp.Kind)
	}
	trig, err := scheduler.ParseTrigger(sp.Trigger, b.loc)
	if err != nil {
		return scheduler.Job{}, fmt.Errorf("%s: %w", name, err)
	}

	var items []item
	switch sp.Kind {
	case KindLearn:
		items, err = learnItems(sp)
	case KindNews:
		items = []item{single(sp, content.NewsRequest(), NewsTitle)}
	case KindMeme:
		items = []item{single(sp, content.MemeRequest(), MemeTitle)}
	}
	if err != nil {
		return scheduler.Job{}, fmt.Errorf("%s: %w", name, err)
	}

	return scheduler.Job{Name: name, Trigger: trig, Handler: b.handler(name, items)}, nil
}

// item is one notification a job produces per run.
type item struct {
	req   content.Request
	title string
	image string
}

func learnItems(sp Spec) ([]item, error) {
	prefix := strings.TrimSpace(sp.Title)
	if prefix == "" {
		prefix = LearnTitlePrefix
	}
	var items []item
	for _, topic := range sp.Topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		req := content.LearningRequest(topic)
		if sp.Prompt != "" {
			req.Prompt = expandTopic(sp.Prompt, topic)
		}
		items = append(items, item{req: req, title: prefix + " " + topic, image: sp.Image})
	}
	if len(items) == 0 {
		return nil, errors.New("learn job needs at least one topic")
	}
	return items, nil
}

func single(sp Spec, req content.Request, title string) item {
	if sp.Prompt != "" {
		req.Prompt = sp.Prompt
	}
	if t := strings.TrimSpace(sp.Title); t != "" {
		title = t
	}
	return item{req: req, title: title, image: sp.Image}
}

func expandTopic(prompt, topic string) string {
	if strings.Contains(prompt, "%s") {
		return strings.ReplaceAll(prompt, "%s", topic)
	}
	return prompt
}

// handler generates and delivers every item in order. A failed delivery is
// logged and the remaining items still go out; the joined delivery errors
// make the run count as failed.
func (b *Builder) handler(job string, items []item) scheduler.Handler {
	log := b.log.With(logx.String("job", job))
	return func(ctx context.Context) error {
		var errs []error
		for _, it := range items {
			body, err := b.gen.Generate(ctx, it.req)
			if err != nil {
				// The placeholder body still goes out.
				log.Warn("content generation failed",
					logx.String("kind", it.req.Kind),
					logx.String("title", it.title),
					logx.Err(err),
				)
			}
			p := notifier.Payload{Title: it.title, Body: body, Image: it.image}
			if err := b.out.Deliver(ctx, p); err != nil {
				log.Error("delivery failed", logx.String("title", it.title), logx.Err(err))
				errs = append(errs, err)
				continue
			}
			log.Debug("delivered", logx.String("title", it.title))
		}
		return errors.Join(errs...)
	}
}
