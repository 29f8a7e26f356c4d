package rating

import (
	"math"
)

const (
	defaultRating = 1500.0
	defaultPhi    = 350.0
	defaultSigma  = 0.06

	glickoScale = 173.7178
	tau         = 0.5
	convTol     = 0.000001
)

// glicko2Rating is a rating and deviation on the internal Glicko-2 scale.
type glicko2Rating struct {
	mu    float64
	phi   float64
	sigma float64
}

func toGlicko2(rating, phi, sigma float64) glicko2Rating {
	if rating == 0 {
		rating = defaultRating
	}
	if phi == 0 {
		phi = defaultPhi
	}
	if sigma == 0 {
		sigma = defaultSigma
	}
	return glicko2Rating{
		mu:    (rating - defaultRating) / glickoScale,
		phi:   phi / glickoScale,
		sigma: sigma,
	}
}

func (r glicko2Rating) display() (rating, phi float64) {
	return r.mu*glickoScale + defaultRating, r.phi * glickoScale
}

func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

func e(mu, muJ, phiJ float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phiJ)*(mu-muJ)))
}

// updateGlicko runs a single rating period with one opponent and one score.
func updateGlicko(player, opponent glicko2Rating, score float64) glicko2Rating {
	gPhi := g(opponent.phi)
	eVal := e(player.mu, opponent.mu, opponent.phi)

	v := 1.0 / (gPhi * gPhi * eVal * (1.0 - eVal))
	delta := v * gPhi * (score - eVal)

	a := math.Log(player.sigma * player.sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		phiSq := player.phi * player.phi
		num := ex * (delta*delta - phiSq - v - ex)
		den := 2.0 * (phiSq + v + ex) * (phiSq + v + ex)
		return num/den - (x-a)/(tau*tau)
	}

	// Illinois algorithm to find the new volatility.
	aX := a
	var bX float64
	if delta*delta > player.phi*player.phi+v {
		bX = math.Log(delta*delta - player.phi*player.phi - v)
	} else {
		k := 1.0
		for f(a-k*tau) < 0 {
			k++
		}
		bX = a - k*tau
	}

	fA := f(aX)
	fB := f(bX)
	for math.Abs(bX-aX) > convTol {
		cX := aX + (aX-bX)*fA/(fB-fA)
		fC := f(cX)
		if fC*fB <= 0 {
			aX = bX
			fA = fB
		} else {
			fA = fA / 2.0
		}
		bX = cX
		fB = fC
	}

	sigmaPrime := math.Exp(aX / 2.0)
	phiStar := math.Sqrt(player.phi*player.phi + sigmaPrime*sigmaPrime)
	phiPrime := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muPrime := player.mu + phiPrime*phiPrime*gPhi*(score-eVal)

	return glicko2Rating{mu: muPrime, phi: phiPrime, sigma: sigmaPrime}
}
