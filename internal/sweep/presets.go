package sweep

import (
	"github.com/pkg/errors"
)

// Preset describes one benchmark dataset: where its splits live under the data root and how a
// run on it is scheduled.
type Preset struct {
	Name   string
	Height int
	Width  int
	Epochs int
	// Roots, Names and Types describe the train and validation splits, in that order.
	Roots      []string
	Names      []string
	Types      []string
	Source     string
	Target     string
	BatchSize  int
	NumClasses int
	// LR is the hand-tuned learning rate, or 0 when there is none.
	LR float64
}

// DefaultSkip are the presets left out of a sweep unless asked for.
var DefaultSkip = []string{"SUN397", "Xray", "FOOD101"}

func classificationPreset(
	name string, epochs int, folder bool, numClasses int, lr float64,
) Preset {
	typ, train, val := "classification", name+"/train.txt", name+"/val.txt"
	if folder {
		typ, train, val = "classification_image_folder", name+"/train", name+"/val"
	}
	return Preset{
		Name:       name,
		Height:     224,
		Width:      224,
		Epochs:     epochs,
		Roots:      []string{train, val},
		Names:      []string{name + "_train", name + "_val"},
		Types:      []string{typ, typ},
		Source:     name + "_train",
		Target:     name + "_val",
		BatchSize:  128,
		NumClasses: numClasses,
		LR:         lr,
	}
}

// Presets returns the built-in dataset presets in sweep order.
func Presets() []Preset {
	return []Preset{
		classificationPreset("CIFAR100", 35, true, 100, 0.005),
		classificationPreset("SUN397", 60, false, 397, 0.008),
		classificationPreset("flowers", 50, false, 102, 0.019),
		classificationPreset("fashionMNIST", 35, true, 10, 0.012),
		classificationPreset("SVHN", 50, true, 10, 0.015),
		classificationPreset("cars", 110, false, 196, 0.023),
		classificationPreset("DTD", 70, true, 47, 0.012),
		classificationPreset("pets", 60, false, 37, 0.015),
		classificationPreset("Xray", 70, true, 2, 0),
		classificationPreset("birdsnap", 35, false, 500, 0.015),
		classificationPreset("caltech101", 55, false, 101, 0.015),
		classificationPreset("FOOD101", 35, false, 101, 0.005),
	}
}

// PresetNames returns the names of the built-in presets in sweep order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}

// LookupPreset returns the built-in preset with the given name.
func LookupPreset(name string) (Preset, error) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.Errorf("unknown dataset %q, known datasets are %v", name, PresetNames())
}
