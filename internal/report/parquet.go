package report

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/haskel/runeconomy/internal/cohort"
)

type summaryParquetRow struct {
	SubjectID      string  `parquet:"name=subject_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	BodyMassKg     float64 `parquet:"name=body_mass_kg, type=DOUBLE"`
	RestVO2MlMin   float64 `parquet:"name=rest_VO2_ml_min, type=DOUBLE"`
	RunVO2MlMin    float64 `parquet:"name=run_VO2_ml_min, type=DOUBLE"`
	RestVCO2MlMin  float64 `parquet:"name=rest_VCO2_ml_min, type=DOUBLE"`
	RunVCO2MlMin   float64 `parquet:"name=run_VCO2_ml_min, type=DOUBLE"`
	NetVO2MlMin    float64 `parquet:"name=net_VO2_ml_min, type=DOUBLE"`
	NetVCO2MlMin   float64 `parquet:"name=net_VCO2_ml_min, type=DOUBLE"`
	RunningEconomy float64 `parquet:"name=running_economy_ml_kg_min, type=DOUBLE"`
	RestPowerWkg   float64 `parquet:"name=rest_metabolic_power_Wkg, type=DOUBLE"`
	RunPowerWkg    float64 `parquet:"name=run_metabolic_power_Wkg, type=DOUBLE"`
	NetPowerWkg    float64 `parquet:"name=net_metabolic_power_Wkg, type=DOUBLE"`
	SpeedMPS       float64 `parquet:"name=speed_m_per_s, type=DOUBLE"`
}

// MarshalParquet encodes the table as a Snappy-compressed Parquet file.
// NaN values are written as NaN.
func MarshalParquet(table *cohort.Table) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(summaryParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	if table != nil {
		for _, s := range table.Rows {
			row := summaryParquetRow{
				SubjectID:      s.SubjectID,
				BodyMassKg:     s.BodyMassKg,
				RestVO2MlMin:   s.RestVO2MlMin,
				RunVO2MlMin:    s.RunVO2MlMin,
				RestVCO2MlMin:  s.RestVCO2MlMin,
				RunVCO2MlMin:   s.RunVCO2MlMin,
				NetVO2MlMin:    s.NetVO2MlMin,
				NetVCO2MlMin:   s.NetVCO2MlMin,
				RunningEconomy: s.RunningEconomy,
				RestPowerWkg:   s.RestPowerWkg,
				RunPowerWkg:    s.RunPowerWkg,
				NetPowerWkg:    s.NetPowerWkg,
				SpeedMPS:       s.SpeedMPS,
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				return nil, err
			}
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
