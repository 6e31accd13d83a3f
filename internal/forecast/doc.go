// Package forecast fits additive Holt-Winters (triple exponential smoothing)
// models to daily series and projects them over a fixed horizon.
//
// The model keeps a level L, a trend T and m seasonal offsets S:
//
//	L_t = α(y_t − S_{t−m}) + (1−α)(L_{t−1} + T_{t−1})
//	T_t = β(L_t − L_{t−1}) + (1−β)T_{t−1}
//	S_t = γ(y_t − L_t) + (1−γ)S_{t−m}
//	ŷ_{n+h} = L_n + h·T_n + S_{(n+h−1) mod m}
//
// State is initialised from the first season. α, β and γ are chosen by
// minimising the one-step-ahead sum of squared errors, first on a coarse grid
// and then with gonum's Nelder-Mead over logit-transformed parameters. Fits
// are deterministic: the same series and Config always give the same forecast.
package forecast
