// Package sheet maps erosion requests and responses to spreadsheet workbooks.
//
// A request workbook has a "Conditions" sheet of parameter/value/unit rows and a "Components"
// sheet with one component per row. Columns of the Components sheet that are not listed in
// componentColumns are geometry parameters.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"Erosion/internal/calc/schema"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

const (
	ConditionsSheet = "Conditions"
	ComponentsSheet = "Components"
)

var ErrWorkbook = errors.New("invalid workbook")

var componentColumns = []string{
	"id", "type", "material", "density", "erosion_constant_k", "velocity_exponent_n", "ductility",
	"geometry_factor", "allowable_wall_loss", "measured_erosion_rate",
}

func bad(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrWorkbook, fmt.Sprintf(format, args...))
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// Import reads a request workbook.
func Import(r io.Reader) (schema.Request, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return schema.Request{}, bad("%v", err)
	}
	defer f.Close()
	return Read(f)
}

// Read converts an open request workbook.
func Read(f *excelize.File) (schema.Request, error) {
	var req schema.Request
	in := &req.CalculationRequest

	rows, err := f.GetRows(ConditionsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return req, bad("sheet %q: %v", ConditionsSheet, err)
	}
	for i, row := range rows {
		key := strings.ToLower(cell(row, 0))
		if key == "" || (i == 0 && key == "parameter") {
			continue
		}
		if err := setCondition(in, key, cell(row, 1), cell(row, 2)); err != nil {
			return req, bad("%s row %d: %v", ConditionsSheet, i+1, err)
		}
	}

	rows, err = f.GetRows(ComponentsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return req, bad("sheet %q: %v", ComponentsSheet, err)
	}
	if len(rows) < 2 {
		return req, bad("sheet %q has no component rows", ComponentsSheet)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for i := 1; i < len(rows); i++ {
		if strings.TrimSpace(strings.Join(rows[i], "")) == "" {
			continue
		}
		c, err := component(header, rows[i])
		if err != nil {
			return req, bad("%s row %d: %v", ComponentsSheet, i+1, err)
		}
		in.Components = append(in.Components, c)
	}
	return req, nil
}

func quantity(value, unit string) (*schema.Quantity, error) {
	v, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, fmt.Errorf("value %q is not a number", value)
	}
	return &schema.Quantity{Value: v, Unit: unit}, nil
}

func flag(value string) (*bool, error) {
	b, err := cast.ToBoolE(strings.ToLower(value))
	if err != nil {
		return nil, fmt.Errorf("value %q is not a boolean", value)
	}
	return &b, nil
}

func phase(fp *schema.FluidProperties, name string) *schema.Phase {
	slot := map[string]**schema.Phase{"oil": &fp.Oil, "water": &fp.Water, "gas": &fp.Gas}[name]
	if slot == nil {
		return nil
	}
	if *slot == nil {
		*slot = &schema.Phase{}
	}
	return *slot
}

func setCondition(in *schema.CalculationRequest, key, value, unit string) error {
	switch key {
	case "request_id":
		in.Metadata.RequestID = value
		return nil
	case "description":
		in.Metadata.Description = value
		return nil
	case "sand.type":
		in.SandProperties.Type = value
		return nil
	case "sand.distribution":
		in.SandProperties.ParticleSize.Distribution = value
		return nil
	case "strict_mode":
		b, err := flag(value)
		if err != nil {
			return err
		}
		in.CalculationOptions.StrictMode = *b
		return nil
	case "include_geometry_factors", "detailed_output", "validate_inputs":
		b, err := flag(value)
		if err != nil {
			return err
		}
		switch key {
		case "include_geometry_factors":
			in.CalculationOptions.IncludeGeometryFactors = b
		case "detailed_output":
			in.CalculationOptions.DetailedOutput = b
		default:
			in.CalculationOptions.ValidateInputs = b
		}
		return nil
	}

	if value == "" {
		return nil
	}
	q, err := quantity(value, unit)
	if err != nil {
		return err
	}
	sc, sp := &in.SystemConditions, &in.SandProperties
	switch key {
	case "pressure":
		sc.Pressure = q
	case "temperature":
		sc.Temperature = q
	case "reference_diameter":
		sc.ReferenceDiameter = q
	case "sand.concentration":
		sp.Concentration = *q
	case "sand.d50":
		sp.ParticleSize.D50 = *q
	case "sand.density":
		sp.Density = *q
	case "sand.mass_flow_rate":
		sp.MassFlowRate = q
	case "time_period":
		in.CalculationOptions.TimePeriod = q
	default:
		name, field, ok := strings.Cut(key, ".")
		p := phase(&in.FluidProperties, name)
		if !ok || p == nil {
			return fmt.Errorf("unknown parameter %q", key)
		}
		switch field {
		case "density_std":
			p.DensityStd = *q
		case "rate_std":
			p.RateStd = *q
		case "viscosity":
			p.Viscosity = *q
		default:
			return fmt.Errorf("unknown parameter %q", key)
		}
	}
	return nil
}

func component(header, row []string) (schema.Component, error) {
	c := schema.Component{Geometry: map[string]schema.Quantity{}}
	for i, key := range header {
		value := cell(row, i)
		if key == "" || value == "" {
			continue
		}
		switch key {
		case "id":
			c.ID = value
			continue
		case "type":
			c.Type = strings.ToLower(value)
			continue
		case "material":
			c.Material.Type = value
			continue
		case "ductility":
			c.Material.Ductility = strings.ToLower(value)
			continue
		}
		q, err := quantity(value, "")
		if err != nil {
			return c, fmt.Errorf("column %s: %v", key, err)
		}
		oc := func() *schema.OperatingConditions {
			if c.OperatingConditions == nil {
				c.OperatingConditions = &schema.OperatingConditions{}
			}
			return c.OperatingConditions
		}
		switch key {
		case "density":
			c.Material.Density = *q
		case "erosion_constant_k":
			c.Material.ErosionConstantK = *q
		case "velocity_exponent_n":
			c.Material.VelocityExponentN = *q
		case "geometry_factor":
			oc().GeometryFactor = q
		case "allowable_wall_loss":
			oc().AllowableWallLoss = q
		case "measured_erosion_rate":
			oc().MeasuredErosionRate = q
		default:
			if d, ok := schema.GeometryDimension(key); ok {
				q.Unit = string(d)
			}
			c.Geometry[key] = *q
		}
	}
	if c.ID == "" {
		return c, errors.New("id is empty")
	}
	return c, nil
}
