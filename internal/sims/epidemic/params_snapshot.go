package epidemic

import (
	"strconv"

	"epi-ca/internal/core"
)

// Parameters publishes the run configuration for the HUD.
func (e *Epidemic) Parameters() core.ParameterSnapshot {
	params := e.cfg.Params
	mode := "random"
	if params.Ring {
		mode = "ring"
	}
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("size", "Size", e.cfg.Size),
				intParam("turns", "Turns", e.cfg.Turns),
				int64Param("seed", "Seed", e.seed),
				floatParam("normalization", "Normalization", e.cfg.Normalization),
			},
		},
		{
			Name: "Transmission",
			Params: []core.Parameter{
				floatParam("infection", "Infection", params.Infection),
				floatParam("infection_inc", "Infection inc", params.InfectionInc),
				floatParam("recovery", "Recovery", params.Recovery),
				floatParam("recovery_inc", "Recovery inc", params.RecoveryInc),
				floatParam("death", "Death", params.Death),
				floatParam("death_inc", "Death inc", params.DeathInc),
				floatParam("immunity_loss", "Immunity loss", params.ImmunityLoss),
				floatParam("immunity_loss_inc", "Immunity loss inc", params.ImmunityLossInc),
			},
		},
		{
			Name:    "Vaccination",
			Summary: mode,
			Params: []core.Parameter{
				floatParam("vaccination", "Vaccination", params.Vaccination),
				boolParam("ring", "Ring", params.Ring),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
