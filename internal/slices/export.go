package slices

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/geostab/slopekit/internal/errors"
)

var exportHeader = []string{
	"x_mid", "y_base", "width", "dl", "alpha", "w", "c", "phi", "u",
	"shear_reinf", "normal_reinf", "x_arm", "y_arm",
}

// Export writes the slice table to an Excel workbook for inspection.
func Export(res *Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "slices"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "failed to create slices sheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "failed to remove default sheet")
	}

	for c, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "failed to write header")
		}
	}
	for r, s := range res.Slices {
		row := []float64{
			s.XMid, s.YBase, s.Width, s.DL, s.Alpha, s.W, s.C, s.Phi, s.U,
			s.ShearReinf, s.NormalReinf, s.XArm, s.YArm,
		}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError,
					fmt.Sprintf("failed to write slice row %d", r+1))
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "failed to save slice export").
			WithContext("path", path)
	}
	return nil
}
