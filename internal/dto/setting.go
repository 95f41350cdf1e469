package dto

// ── 运行时配置模块 DTO ──

// SettingVariantResponse 配置键下的一个候选变体
type SettingVariantResponse struct {
	ID     string `json:"id"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// SettingGroupResponse 按键分组的变体列表
type SettingGroupResponse struct {
	Key         string                   `json:"key"`
	VerboseName string                   `json:"verbose_name"`
	Resolved    string                   `json:"resolved"` // 当前生效的值（激活变体或默认值）
	Variants    []SettingVariantResponse `json:"variants"`
}

// SaveVariantsRequest save 命令：提交全部变体的新值和唯一激活行
//
// Values 以变体 id 为键；键下每个既有变体都必须出现，
// ActiveID 必须是该键的变体之一。
type SaveVariantsRequest struct {
	ActiveID string            `json:"active_id" binding:"required,uuid"`
	Values   map[string]string `json:"values"    binding:"required"`
}
