/*
Package colblock implements a columnar block format for typed, nullable
scalar columns. Columns are dictionary encoded into independently
decodable column binaries, which are packed into size-bounded blocks
carrying a range index for skipping blocks without decoding them.

Data Structure Documentation

Column binary

A dictionary encoded column binary starts with the value range of the
column, followed by the byte order of the body and the compressed body.
The range bounds are big-endian and zero if the column has no values.

    Column binary layout:
    +-------------------+-------------------+-------------------------+-------------------+
    | min (scalar, BE)  | max (scalar, BE)  | byte order (1 byte)     | compressed body   |
    +-------------------+-------------------+-------------------------+-------------------+

    Body:
    +-------------------------------------------+-----------------------------------------------+
    | index array (row count * index width)     | dictionary (cardinality * scalar width)       |
    +-------------------------------------------+-----------------------------------------------+

Dictionary index 0 is reserved for nulls. The index width is 1, 2 or 4
bytes, the narrowest to address the cardinality (dictionary size
including the null slot).

Columns without nulls holding a single distinct value use the constant
codec instead.

    Constant layout:
    +-------------------+---------------------------+
    | value (scalar,BE) |  row count (4 bytes, BE)  |
    +-------------------+---------------------------+

Block

A block contains a header, the row group table, the compressed metadata
and the data section. All fixed width integers are big-endian.

    Block layout:
    +--------+-----------------+-----------------------+-------------------------+----------------------+--------------+---------+
    | header | groups (4 bytes)| row counts (4 bytes*n)| metadata len (4 bytes)  | metadata (compressed)| data section | padding |
    +--------+-----------------+-----------------------+-------------------------+----------------------+--------------+---------+

    Header:
    +------------------------------+------------+----------------------------+-------------+
    | compressor len (4 bytes)     | compressor |  index len (4 bytes)       | index tree  |
    +------------------------------+------------+----------------------------+-------------+

    Metadata, per row group:
    +------------------------+----------+-------+----------+
    | column count (varint)  | column 1 |  ...  | column n |
    +------------------------+----------+-------+----------+

    Column:
    +---------+--------------+--------+----------+-------------------------------------------------------------------------+
    | codec   |  compressor  |  name  | type (1) | rows, logical size, cardinality, offset, length (varint)                |
    +---------+--------------+--------+----------+-------------------------------------------------------------------------+

Strings are prefixed with their varint length, offsets are relative to
the data section. Fixed size blocks are padded with zeros.
*/
package colblock
