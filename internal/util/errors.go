package util

import "errors"

// 错误分类，调用方用 errors.Is 分支，不做消息文本匹配。
// 未命中任何一类的存储错误按内部错误处理。
var (
	ErrDuplicateSubmission  = errors.New("该指纹在此场次已提交过问卷")
	ErrAnalysisNotFound     = errors.New("分析结果不存在")
	ErrNoResponses          = errors.New("该场次没有问卷数据")
	ErrAggregateUnavailable = errors.New("数据库聚合函数不可用")
	ErrExternalService      = errors.New("外部模型服务调用失败")
)
