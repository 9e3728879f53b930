package models

// ProviderID is the opaque key identifying one AI chat backend as it appears
// in conversation-service responses ("deepseek", "qwen", ...). Unknown ids are
// valid: [MetaFor] falls back to generic display metadata for them.
type ProviderID string

const (
	ProviderDeepSeek ProviderID = "deepseek"
	ProviderQwen     ProviderID = "qwen"
	ProviderKimi     ProviderID = "kimi"
	ProviderDoubao   ProviderID = "doubao"
)

// ProviderMeta describes one backend for display purposes: a human-readable
// name, a short list icon, and the nominal context window of the default model.
type ProviderMeta struct {
	ID            ProviderID
	DisplayName   string
	Icon          string
	ContextWindow int
}

// knownProviders lists the backends the conversation service manages, in the
// order the service iterates them. Context windows match the default model of
// each provider family.
var knownProviders = []ProviderMeta{
	{ID: ProviderDeepSeek, DisplayName: "DeepSeek", Icon: "[DS]", ContextWindow: 16384},
	{ID: ProviderQwen, DisplayName: "Qwen", Icon: "[QW]", ContextWindow: 8192},
	{ID: ProviderKimi, DisplayName: "Kimi", Icon: "[KM]", ContextWindow: 8192},
	{ID: ProviderDoubao, DisplayName: "Doubao", Icon: "[DB]", ContextWindow: 16384},
}

// KnownProviders returns the registry in stable display order. The returned
// slice is a copy; callers may reorder it freely.
func KnownProviders() []ProviderMeta {
	out := make([]ProviderMeta, len(knownProviders))
	copy(out, knownProviders)
	return out
}

// MetaFor resolves display metadata for any provider id. It is a total
// function: ids missing from the registry get the raw id as display name, a
// generic icon, and a conservative context window.
func MetaFor(id ProviderID) ProviderMeta {
	for _, meta := range knownProviders {
		if meta.ID == id {
			return meta
		}
	}
	return ProviderMeta{ID: id, DisplayName: string(id), Icon: "[?]", ContextWindow: 4096}
}

// IsKnown reports whether id is present in the registry.
func IsKnown(id ProviderID) bool {
	for _, meta := range knownProviders {
		if meta.ID == id {
			return true
		}
	}
	return false
}
