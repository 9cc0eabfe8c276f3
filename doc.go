/*
 * doc.go, part of moldynplot.
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*Package moldynplot is the root package of the moldynplot dataset layer. It provides the
indexed table type shared by all the analyses, the discretized probability distributions
they produce, the error types all the packages return, and reading and writing of tables
from plain and compressed text files.



	**Capabilities**


    Reads CSV and whitespace-separated tables, optionally compressed with zstd,
	gzip or flate, into a Table indexed by residue, time or momentum transfer (q).

    Writes tables back, replacing the destination file atomically.

    Tables keep column insertion order. A column named "x_se" is the standard
	error companion of the column "x".

The analyses themselves live in subpackages:

    mdstat: downsampling, kernel density estimates, block averaging and native
	contact fractions for time series.

    histo: histograms with explicit dividers.

    scale: scaling of scattering intensities by a constant or by a fit to a reference curve.

    align: index-aligned correlation and difference tables.

    dataset: dataset specifications, their cache keys, the process cache and the
	per-kind transform pipelines.

The mdset command builds the datasets in a JSON specification file and writes their tables.

*/
package moldynplot
