package main

import (
	"log"

	"github.com/byteshadow/EasyCNTK/evaluate"
)

func reportRegression(src evaluate.Source) error {
	m, err := evaluate.Regression(src)
	if err != nil {
		return err
	}
	for i, f := range m.Features {
		log.Printf("output=%d mae=%.4f rmse=%.4f r2=%.4f", i, f.MAE, f.RMSE, f.R2)
	}
	return nil
}

func reportBinary(src evaluate.Source, threshold float64) error {
	m, err := evaluate.Binary(src, threshold)
	if err != nil {
		return err
	}
	log.Printf("count=%d accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f", m.Count,
		m.Accuracy, m.Precision, m.Recall, m.F1)
	log.Printf("tp=%d tn=%d fp=%d fn=%d", m.TP, m.TN, m.FP, m.FN)
	return nil
}

func reportMultiClass(src evaluate.Source) error {
	m, err := evaluate.MultiClass(src)
	if err != nil {
		return err
	}
	log.Printf("count=%d accuracy=%.4f", m.Count, m.Accuracy)
	logClasses(m.Classes)
	return nil
}

func reportMultiLabel(src evaluate.Source, threshold float64) error {
	m, err := evaluate.MultiLabel(src, threshold)
	if err != nil {
		return err
	}
	log.Printf("count=%d label_accuracy=%.4f", m.Count, m.Accuracy)
	logClasses(m.Classes)
	return nil
}

func logClasses(classes []evaluate.ClassItem) {
	for i, c := range classes {
		log.Printf("class=%d precision=%.4f recall=%.4f f1=%.4f fraction=%.4f", i,
			c.Precision, c.Recall, c.F1, c.Fraction)
	}
}
