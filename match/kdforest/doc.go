// Package kdforest provides an approximate descriptor index made of
// randomized k-d trees searched together in best-bin-first order. Trees
// split on a dimension picked at random among the highest-variance ones, and
// a query stops once it has checked a fixed number of train descriptors.
package kdforest
