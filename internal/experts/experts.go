// Package experts resolves the identifiers and result file names of the
// experts evaluated in an experiment. Nothing here touches the filesystem.
package experts

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

const (
	// Aggregator is the expert id of the mixture-of-experts filtered result.
	Aggregator = "moe-f"

	// DefaultExperimentsPath is where experiment directories live relative
	// to the working directory.
	DefaultExperimentsPath = "MoE-F_supplementary.materials/experiments"

	// RestrictedProvider only published results for RestrictedProviderSeed.
	RestrictedProvider     = "OpenAI"
	RestrictedProviderSeed = 42
)

// Adapters are the fine-tuning dataset variants whose predictions are kept
// next to the base model's.
var Adapters = []string{"nifty", "acl18", "cikm18", "bigdata22"}

// Seeds are the seeds experiments were run with.
var Seeds = []int{0, 13, 42}

// AllLLMs lists every chat model evaluated.
var AllLLMs = []string{
	"Llama-2-7b-chat-hf",
	"Llama-2-70b-chat-hf",
	"Meta-Llama-3-8B-Instruct",
	"Meta-Llama-3-70B-Instruct",
	"Mixtral-8x7B-Instruct-v0.1",
	"dbrx-instruct",
	"OpenAI-gpt-4o",
}

// autoAdapterIDs always get their adapter result files listed.
var autoAdapterIDs = []string{"Meta-Llama-3-8B-Instruct", "Llama-2-7b-chat"}

var ErrSeedNotAvailable = errors.New("experts: seed not available for provider")

// ChatLMID joins a model family and variant into the experiment id.
func ChatLMID(modelName, modelVariant string) string {
	return modelName + "-" + modelVariant
}

// Experts returns the base model id, followed by the adapters when
// withAdapters is set and the aggregator when withResults is set.
func Experts(modelName, modelVariant string, withResults, withAdapters bool) []string {
	experts := []string{ChatLMID(modelName, modelVariant)}
	if withAdapters {
		experts = append(experts, Adapters...)
	}
	if withResults {
		experts = append(experts, Aggregator)
	}
	return experts
}

// HasAutoAdapters reports whether the model's adapter results are listed
// even when not requested.
func HasAutoAdapters(modelName, modelVariant string) bool {
	return slices.Contains(autoAdapterIDs, ChatLMID(modelName, modelVariant))
}

// ResultFileNames returns df_<expert>.csv for every expert. Asking for the
// aggregator result never enables the adapters on its own.
func ResultFileNames(modelName, modelVariant string, withResults, withAdapters bool) []string {
	adapters := withAdapters || HasAutoAdapters(modelName, modelVariant)
	experts := Experts(modelName, modelVariant, withResults, adapters)

	names := make([]string, 0, len(experts))
	for _, expert := range experts {
		names = append(names, ResultFileName(expert))
	}
	return names
}

func ResultFileName(expert string) string {
	return "df_" + expert + ".csv"
}

// ExperimentID names a single run, e.g. Meta-Llama-3-8B-Instruct_seed-0.
func ExperimentID(modelName, modelVariant string, seed int) string {
	return fmt.Sprintf("%s_seed-%d", ChatLMID(modelName, modelVariant), seed)
}

// RunLabel names a run in printed reports, e.g. Meta-Llama-3-8B-Instruct_seed_0.
func RunLabel(modelName, modelVariant string, seed int) string {
	return fmt.Sprintf("%s_seed_%d", ChatLMID(modelName, modelVariant), seed)
}

// KnownSeed reports whether experiments were run with seed.
func KnownSeed(seed int) bool {
	return slices.Contains(Seeds, seed)
}

// KnownModel reports whether the model is one of AllLLMs.
func KnownModel(modelName, modelVariant string) bool {
	return slices.Contains(AllLLMs, ChatLMID(modelName, modelVariant))
}

// ExperimentDir is the directory holding every result file of a run.
func ExperimentDir(root, modelName, modelVariant string, seed int) string {
	return filepath.Join(root, ExperimentID(modelName, modelVariant, seed))
}

// ResultPath is the base model's own prediction file for a run.
func ResultPath(root, modelName, modelVariant string, seed int) string {
	names := ResultFileNames(modelName, modelVariant, false, false)
	return filepath.Join(ExperimentDir(root, modelName, modelVariant, seed), names[0])
}

// ValidateSeed enforces the seeds a provider has results for.
func ValidateSeed(modelName string, seed int) error {
	if modelName == RestrictedProvider && seed != RestrictedProviderSeed {
		return fmt.Errorf("%w: only seed %d is available for %s, got %d",
			ErrSeedNotAvailable, RestrictedProviderSeed, modelName, seed)
	}
	return nil
}
