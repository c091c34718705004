package osdi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPanic 模型报告不可恢复错误,整个过程终止
	ErrPanic = errors.New("osdi: fatal model failure")
	// ErrPrivate 参数或结构校验错误,其他模型继续处理
	ErrPrivate = errors.New("osdi: initialization errors")
	// ErrNoMem 矩阵元素分配失败
	ErrNoMem = errors.New("osdi: out of memory")
	// ErrAllocation 节点分配失败
	ErrAllocation = errors.New("osdi: node allocation failed")
	// ErrInconsistent 未知的初始化错误码
	ErrInconsistent = errors.New("osdi: unknown init error code")
	// ErrNotBound 列压缩存储中找不到矩阵元素
	ErrNotBound = errors.New("osdi: coefficient not found in bind table")
)

// Stage 出错阶段
type Stage string

const (
	StageSetupModel    Stage = "setup_model"
	StageSetupInstance Stage = "setup_instance"
	StageTempModel     Stage = "setup_model (temp)"
	StageTempInstance  Stage = "setup_instance (temp)"
	StageTopology      Stage = "topology"
	StageJacobian      Stage = "jacobian"
	StageSparse        Stage = "sparse binding"
)

// ParamError 单个初始化错误
type ParamError struct {
	Code        uint32 // 错误码
	ParameterID uint32 // 参数编号
	Param       string // 参数名称,未知错误码为空
}

// SetupError 带上下文的初始化错误
type SetupError struct {
	Stage    Stage
	Model    string
	Instance string
	Errors   []ParamError
	Err      error // 分类哨兵错误
	Cause    error // 底层错误
}

// Error 实现 error 接口
func (e *SetupError) Error() string {
	var sb strings.Builder
	sb.WriteString("osdi: ")
	sb.WriteString(string(e.Stage))
	if e.Model != "" {
		fmt.Fprintf(&sb, " model %s", e.Model)
	}
	if e.Instance != "" {
		fmt.Fprintf(&sb, " instance %s", e.Instance)
	}
	switch {
	case len(e.Errors) > 0:
		fmt.Fprintf(&sb, ": %d errors occurred during initialization", len(e.Errors))
		names := make([]string, 0, len(e.Errors))
		for _, pe := range e.Errors {
			if pe.Param != "" {
				names = append(names, pe.Param)
			} else {
				names = append(names, fmt.Sprintf("code %d", pe.Code))
			}
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(names, ", "))
	case e.Cause != nil:
		fmt.Fprintf(&sb, ": %v", e.Cause)
	case e.Err != nil:
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap 返回分类错误、底层错误以及未知错误码标记
func (e *SetupError) Unwrap() []error {
	list := []error{e.Err}
	if e.Cause != nil {
		list = append(list, e.Cause)
	}
	for _, pe := range e.Errors {
		if pe.Code != InitErrOutOfBounds {
			list = append(list, ErrInconsistent)
			break
		}
	}
	return list
}

// outcome 单个模型/实例的处理结果
// abort 非空时立即终止整个过程,cont 非空时记录后继续
type outcome struct {
	abort error
	cont  error
}

func abortWith(err error) outcome   { return outcome{abort: err} }
func continueWith(err error) outcome { return outcome{cont: err} }

// fatal 资源或致命错误:半成品拓扑无法继续
func fatal(err error) bool {
	return errors.Is(err, ErrPanic) || errors.Is(err, ErrNoMem) ||
		errors.Is(err, ErrAllocation) || errors.Is(err, ErrNotBound)
}

// IsFatal 错误是否导致整个过程终止
func IsFatal(err error) bool { return err != nil && fatal(err) }

// classify 根据错误类别选择终止或继续
func classify(err error) outcome {
	switch {
	case err == nil:
		return outcome{}
	case fatal(err):
		return abortWith(err)
	default:
		return continueWith(err)
	}
}
