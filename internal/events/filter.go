package events

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/juju/errors"

	"recordhub/pkg/domain"
)

// Predicate decides whether a subscriber wants an event, given the variables
// it subscribed with. An error counts as no match.
type Predicate func(event domain.ChangeEvent, vars map[string]string) (bool, error)

// Filter forwards the events of sub that satisfy predicate, in order. The
// returned channel is closed when the subscription ends or ctx is done.
// A nil predicate forwards everything.
func Filter(ctx context.Context, sub *Subscription, predicate Predicate, vars map[string]string) <-chan domain.ChangeEvent {
	if predicate == nil {
		predicate = MatchAll
	}
	out := make(chan domain.ChangeEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if !matches(predicate, event, vars) {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func matches(predicate Predicate, event domain.ChangeEvent, vars map[string]string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("predicate panicked on %s: %v", event.Topic, r)
			ok = false
		}
	}()
	ok, err := predicate(event, vars)
	if err != nil {
		logger.Debugf("predicate failed on %s: %v", event.Topic, err)
		return false
	}
	return ok
}

// MatchAll accepts every event.
func MatchAll(domain.ChangeEvent, map[string]string) (bool, error) {
	return true, nil
}

// MatchReference accepts events whose record payload holds a foreign key
// equal to vars[field]. Without a value for field nothing matches; a null
// key never equals a supplied value.
func MatchReference(field string) Predicate {
	return func(event domain.ChangeEvent, vars map[string]string) (bool, error) {
		want, ok := vars[field]
		if !ok {
			return false, nil
		}
		record, ok := event.Record()
		if !ok {
			return false, errors.NotValidf("%s payload for reference filter", event.Topic)
		}
		got, ok := record.Reference(field)
		return ok && got == want, nil
	}
}

// CompileExpr compiles a boolean expr-lang program into a predicate. The
// program sees payload (the event payload as decoded JSON), vars, topic and
// action, for example:
//
//	payload.pages > 100 && payload.author_id == vars.author_id
func CompileExpr(source string) (Predicate, error) {
	if source == "" {
		return nil, domain.InvalidArgumentf("empty filter expression")
	}
	prg, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return nil, domain.InvalidArgumentf("filter expression: %v", err)
	}
	return exprPredicate(prg), nil
}

func exprPredicate(prg *vm.Program) Predicate {
	return func(event domain.ChangeEvent, vars map[string]string) (bool, error) {
		payload, err := event.PayloadMap()
		if err != nil {
			return false, errors.Trace(err)
		}
		env := map[string]any{
			"payload": payload,
			"vars":    vars,
			"topic":   event.Topic,
			"action":  string(event.Action),
		}
		res, err := expr.Run(prg, env)
		if err != nil {
			return false, err
		}
		ok, isBool := res.(bool)
		if !isBool {
			return false, errors.Errorf("filter returned %T", res)
		}
		return ok, nil
	}
}

// All combines predicates; every one must match.
func All(predicates ...Predicate) Predicate {
	return func(event domain.ChangeEvent, vars map[string]string) (bool, error) {
		for _, p := range predicates {
			ok, err := p(event, vars)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
