package osdi

import "github.com/sirupsen/logrus"

// InitError 入口函数报告的错误
type InitError struct {
	Code        uint32 // 错误码
	ParameterID uint32 // InitErrOutOfBounds 时的参数编号
}

// InitInfo 入口函数返回值
type InitInfo struct {
	Flags  uint32
	Errors []InitError
}

// OK 无错误的返回值
func OK() InitInfo { return InitInfo{} }

// OutOfBounds 参数越界错误
func OutOfBounds(paramID int) InitError {
	return InitError{Code: InitErrOutOfBounds, ParameterID: uint32(paramID)}
}

// handleInitInfo 处理入口函数返回值
// 致命或结束标志终止整个过程;错误列表逐条记录日志后作为校验错误返回
func handleInitInfo(info InitInfo, d *Descriptor, stage Stage, model, inst string) outcome {
	if info.Flags&(EvalRetFlagFatal|EvalRetFlagFinish) != 0 {
		return abortWith(&SetupError{Stage: stage, Model: model, Instance: inst, Err: ErrPanic})
	}
	if len(info.Errors) == 0 {
		return outcome{}
	}
	log := logrus.WithFields(logrus.Fields{"device": d.Name, "model": model, "stage": stage})
	if inst != "" {
		log = log.WithField("instance", inst)
	}
	errs := make([]ParamError, len(info.Errors))
	for i, e := range info.Errors {
		errs[i] = ParamError{Code: e.Code, ParameterID: e.ParameterID}
		switch e.Code {
		case InitErrOutOfBounds:
			errs[i].Param = d.ParamName(e.ParameterID)
			log.WithField("param", errs[i].Param).Warnf("parameter %s is out of bounds", errs[i].Param)
		default:
			log.WithField("code", e.Code).Errorf("unknown OSDI init error code %d", e.Code)
		}
	}
	return continueWith(&SetupError{Stage: stage, Model: model, Instance: inst, Errors: errs, Err: ErrPrivate})
}
