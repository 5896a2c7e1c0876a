package ising

// LocalEnergy returns -s(i,j) times the sum of its four neighbours. Every
// bond is seen from both endpoints.
func (l *Lattice) LocalEnergy(i, j int) float64 {
	sum := 0
	for _, nb := range l.Neighbors(i, j) {
		sum += int(l.Spin(nb.I, nb.J))
	}
	return -float64(int(l.Spin(i, j)) * sum)
}

// FieldEnergy returns -h·s(i,j).
func (l *Lattice) FieldEnergy(i, j int, h float64) float64 {
	return -h * float64(l.Spin(i, j))
}

// TotalEnergy sums LocalEnergy/4 + FieldEnergy over every site. Only the
// interaction term is divided; the field term belongs to a single site.
func (l *Lattice) TotalEnergy(h float64) float64 {
	total := 0.0
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.m; j++ {
			total += l.LocalEnergy(i, j)/4 + l.FieldEnergy(i, j, h)
		}
	}
	return total
}

// DeltaEnergy is the proposal energy difference for flipping (i, j). Negating
// a ±1 spin negates both of its terms, so the change is -2 times their sum.
func (l *Lattice) DeltaEnergy(i, j int, h float64) float64 {
	return -2 * (l.LocalEnergy(i, j) + l.FieldEnergy(i, j, h))
}

// TotalEnergyChange is the exact change of TotalEnergy(h) when (i, j) flips.
// Under the /4 normalisation each of the site's bonds weighs 1/2, so the
// interaction part moves by half of its share in DeltaEnergy. On a lattice
// one site wide the site is its own neighbour; those bonds never change.
func (l *Lattice) TotalEnergyChange(i, j int, h float64) float64 {
	sum := 0
	for _, nb := range l.Neighbors(i, j) {
		if nb.I == i && nb.J == j {
			continue
		}
		sum += int(l.Spin(nb.I, nb.J))
	}
	return float64(int(l.Spin(i, j))*sum) - 2*l.FieldEnergy(i, j, h)
}
