package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/spacesedan/trendeval/internal/models"
)

// classCounts holds per-label counts, indexed like models.Labels.
type classCounts struct {
	truePositives []float64
	predicted     []float64
	support       []float64
	correct       int
	rows          int
	outOfSet      bool
}

func countClasses(labels, predictions []string) classCounts {
	n := len(models.Labels)
	c := classCounts{
		truePositives: make([]float64, n),
		predicted:     make([]float64, n),
		support:       make([]float64, n),
		rows:          len(labels),
	}
	for i := range labels {
		t, p := labels[i], predictions[i]
		if t == p {
			c.correct++
		}

		ti := models.Label(t).Index()
		pi := models.Label(p).Index()
		if ti < 0 || pi < 0 {
			c.outOfSet = true
		}
		if pi >= 0 {
			c.predicted[pi]++
		}
		if ti >= 0 {
			c.support[ti]++
			if ti == pi {
				c.truePositives[ti]++
			}
		}
	}
	return c
}

// safeDiv returns zero when the denominator is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func (c classCounts) accuracy() float64 {
	return safeDiv(float64(c.correct), float64(c.rows))
}

// perClass returns precision, recall and F1 per label.
func (c classCounts) perClass() (precision, recall, f1 []float64) {
	n := len(c.truePositives)
	precision = make([]float64, n)
	recall = make([]float64, n)
	f1 = make([]float64, n)
	for i := 0; i < n; i++ {
		tp := c.truePositives[i]
		precision[i] = safeDiv(tp, c.predicted[i])
		recall[i] = safeDiv(tp, c.support[i])
		f1[i] = safeDiv(2*tp, c.predicted[i]+c.support[i])
	}
	return precision, recall, f1
}

func (c classCounts) micro() models.ClassScores {
	tp := floats.Sum(c.truePositives)
	pred := floats.Sum(c.predicted)
	support := floats.Sum(c.support)
	return models.ClassScores{
		Precision: safeDiv(tp, pred),
		Recall:    safeDiv(tp, support),
		F1:        safeDiv(2*tp, pred+support),
		Support:   int(support),
	}
}

func (c classCounts) macro() models.ClassScores {
	p, r, f := c.perClass()
	n := float64(len(p))
	return models.ClassScores{
		Precision: floats.Sum(p) / n,
		Recall:    floats.Sum(r) / n,
		F1:        floats.Sum(f) / n,
		Support:   int(floats.Sum(c.support)),
	}
}

func (c classCounts) weighted() models.ClassScores {
	p, r, f := c.perClass()
	total := floats.Sum(c.support)
	return models.ClassScores{
		Precision: safeDiv(floats.Dot(p, c.support), total),
		Recall:    safeDiv(floats.Dot(r, c.support), total),
		F1:        safeDiv(floats.Dot(f, c.support), total),
		Support:   int(total),
	}
}

func (c classCounts) average(a Average) (models.ClassScores, error) {
	switch a {
	case AverageWeighted:
		return c.weighted(), nil
	case AverageMicro:
		return c.micro(), nil
	case AverageMacro:
		return c.macro(), nil
	}
	return models.ClassScores{}, fmt.Errorf("%w: %q", ErrUnknownAverage, a)
}

// report builds the per-class breakdown. The accuracy entry replaces the
// micro average row only when no out-of-set value was seen, since the two
// are equal in that case.
func (c classCounts) report() *models.ClassificationReport {
	p, r, f := c.perClass()
	rep := &models.ClassificationReport{
		Classes:     make(map[models.Label]models.ClassScores, len(models.Labels)),
		MacroAvg:    c.macro(),
		WeightedAvg: c.weighted(),
	}
	for i, l := range models.Labels {
		rep.Classes[l] = models.ClassScores{
			Precision: p[i],
			Recall:    r[i],
			F1:        f[i],
			Support:   int(c.support[i]),
		}
	}

	micro := c.micro()
	if c.outOfSet {
		rep.MicroAvg = &micro
	} else {
		acc := micro.F1
		rep.Accuracy = &acc
	}
	return rep
}

// ConfusionMatrix counts rows by (truth, prediction) over the label set.
// Rows with an out-of-set value are not counted.
type ConfusionMatrix [3][3]int

func confusion(labels, predictions []string) ConfusionMatrix {
	var m ConfusionMatrix
	for i := range labels {
		ti := models.Label(labels[i]).Index()
		pi := models.Label(predictions[i]).Index()
		if ti >= 0 && pi >= 0 {
			m[ti][pi]++
		}
	}
	return m
}
