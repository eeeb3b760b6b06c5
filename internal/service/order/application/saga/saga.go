// internal/service/order/application/saga/saga.go
package saga

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"vesta/internal/pkg/logger"
)

// ErrCompensationFailed 表示某个跨服务步骤失败后，回滚本身也失败了。
// 此时系统可能处于不一致状态，必须记录并人工对账，不能静默丢弃。
var ErrCompensationFailed = errors.New("saga: compensation failed")

// Step 是 saga 中的一个本地动作及其补偿。
// Compensate 为 nil 表示该步骤不需要补偿（典型的是放在最后的不可逆步骤）。
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 按声明顺序执行一组步骤；任何一步失败时，
// 对已完成的步骤按逆序执行补偿。
// 这是跨服务变更唯一的原子性边界：要么全部提交，要么全部回退。
type Saga struct {
	name  string
	steps []Step
}

// New 创建一个命名的 saga
func New(name string, steps ...Step) *Saga {
	return &Saga{name: name, steps: steps}
}

// Execute 顺序执行所有步骤。
// 返回值：全部成功返回 nil；失败且补偿全部成功时返回触发失败的原始错误；
// 任何补偿失败时返回包裹了 ErrCompensationFailed 和原始错误的组合错误。
func (s *Saga) Execute(ctx context.Context) error {
	tracer := otel.Tracer("saga")
	ctx, span := tracer.Start(ctx, "saga."+s.name)
	defer span.End()

	var done []Step
	for _, step := range s.steps {
		if err := s.runStep(ctx, step); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "saga step failed: "+step.Name)
			return s.rollback(ctx, done, step.Name, err)
		}
		done = append(done, step)
	}
	return nil
}

func (s *Saga) runStep(ctx context.Context, step Step) error {
	tracer := otel.Tracer("saga")
	ctx, span := tracer.Start(ctx, "saga."+s.name+"."+step.Name)
	defer span.End()
	return step.Run(ctx)
}

// rollback 逆序补偿已完成的步骤
func (s *Saga) rollback(ctx context.Context, done []Step, failedStep string, cause error) error {
	logger.Ctx(ctx).Warn().
		Str("saga", s.name).
		Str("failed_step", failedStep).
		Err(cause).
		Msgf("saga failed, compensating %d completed steps", len(done))

	var compErrs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			// 补偿失败需要人工介入，完整记录现场
			logger.Ctx(ctx).Error().
				Str("saga", s.name).
				Str("step", step.Name).
				Err(err).
				Msg("CRITICAL: saga compensation failed, manual reconciliation required")
			compErrs = append(compErrs, pkgerrors.Wrapf(err, "compensate step %s", step.Name))
		}
	}

	if len(compErrs) > 0 {
		return errors.Join(append([]error{ErrCompensationFailed, cause}, compErrs...)...)
	}
	return cause
}
