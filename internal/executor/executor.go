package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/mondir/internal/builder"
	"github.com/specialistvlad/mondir/internal/ctxlog"
	"github.com/specialistvlad/mondir/internal/host"
	"github.com/specialistvlad/mondir/internal/nodeid"
	"github.com/specialistvlad/mondir/internal/tmplerr"
)

// Emission records one output file to be rendered.
type Emission struct {
	// Vars is the snapshot of every binding visible at the leaf.
	Vars     host.Vars
	Filename *builder.Template
	Content  *builder.Template
	// Node is the address of the thisfile leaf that fired.
	Node nodeid.Address
}

// Run interprets prog with base as the outermost scope and returns the
// emissions in execution order. Host failures stop the run and are returned
// as *tmplerr.RenderingError.
func Run(ctx context.Context, prog *builder.Program, h host.Host, base host.Vars) ([]Emission, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running directory program.", "file", prog.Name)

	r := &runner{ctx: ctx, prog: prog, host: h}
	if err := r.visit(prog.Root, NewScope(base)); err != nil {
		return nil, err
	}

	logger.Debug("Directory program finished.", "file", prog.Name, "emissions", len(r.emissions))
	return r.emissions, nil
}

type runner struct {
	ctx       context.Context
	prog      *builder.Program
	host      host.Host
	emissions []Emission
}

func (r *runner) visit(n builder.Node, sc *Scope) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	switch n := n.(type) {
	case *builder.Sequence:
		for _, child := range n.Children {
			if err := r.visit(child, sc); err != nil {
				return err
			}
		}
		return nil

	case *builder.Loop:
		items, err := r.host.Iterate(n.Iterable.Snippet(), sc.Flatten())
		if err != nil {
			return r.fail(n.Address, "iterable", n.Iterable.Range, err)
		}
		for _, item := range items {
			iter := sc.Child()
			switch {
			case n.Spread:
				v := item.Value
				iter.item = &v
			case n.KeyVar != "":
				iter.Set(n.KeyVar, item.Key)
				iter.Set(n.ValueVar, item.Value)
			default:
				iter.Set(n.ValueVar, item.Value)
			}
			if err := r.visit(n.Body, iter); err != nil {
				return err
			}
		}
		return nil

	case *builder.Conditional:
		for _, branch := range n.Branches {
			if branch.Cond != nil {
				ok, err := r.truthy(*branch.Cond, sc)
				if err != nil {
					return r.fail(n.Address, "condition", branch.Cond.Range, err)
				}
				if !ok {
					continue
				}
			}
			return r.visit(branch.Body, sc.Child())
		}
		return nil

	case *builder.Emit:
		r.emissions = append(r.emissions, Emission{
			Vars:     sc.Flatten(),
			Filename: n.Filename,
			Content:  n.Content,
			Node:     n.Address,
		})
		return nil

	case *builder.Merge:
		sc.Merge()
		return nil

	default:
		return fmt.Errorf("unknown program node %T", n)
	}
}

func (r *runner) truthy(cond builder.Expr, sc *Scope) (bool, error) {
	v, err := r.host.Evaluate(cond.Snippet(), sc.Flatten())
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, errors.New("condition is null")
	}
	if !v.IsKnown() {
		return false, errors.New("condition is not known")
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("condition must be a bool, got %s", v.Type().FriendlyName())
	}
	return b.True(), nil
}

func (r *runner) fail(addr nodeid.Address, expr string, rng hcl.Range, err error) error {
	return &tmplerr.RenderingError{
		File:  r.prog.Name,
		Node:  addr.String(),
		Expr:  expr,
		Range: rng,
		Err:   err,
	}
}
